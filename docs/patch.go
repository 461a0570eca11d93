package docs

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// applyJSONPatch applies an RFC 6902 patch document to subtree, per
// spec §4.2's json_patch rule.
func applyJSONPatch(subtree any, patchPayload []byte) (any, error) {
	docBytes, err := json.Marshal(subtree)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.DecodePatch(patchPayload)
	if err != nil {
		return nil, err
	}
	patched, err := patch.Apply(docBytes)
	if err != nil {
		return nil, err
	}
	return Unmarshal(patched, FormatJSON)
}

// applyMergePatch applies an RFC 7396 merge patch to subtree (a nil
// subtree is merged as an empty object, as RFC 7396 does for a
// non-object target), per spec §4.2's json_merge_patch rule.
func applyMergePatch(subtree any, patchPayload []byte) (any, error) {
	if subtree == nil {
		subtree = map[string]any{}
	}
	docBytes, err := json.Marshal(subtree)
	if err != nil {
		return nil, err
	}
	merged, err := jsonpatch.MergePatch(docBytes, patchPayload)
	if err != nil {
		return nil, err
	}
	return Unmarshal(merged, FormatJSON)
}

// MergeJSONPatches composes two RFC 7396 merge patches so that
// applyMergePatch(applyMergePatch(d, p1), p2) == applyMergePatch(d,
// MergeJSONPatches(p1, p2)) — the associativity property spec §8 asks
// for, implemented via jsonpatch.MergeMergePatches.
func MergeJSONPatches(p1, p2 []byte) ([]byte, error) {
	return jsonpatch.MergeMergePatches(p1, p2)
}
