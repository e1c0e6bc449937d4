package http

import (
	"fmt"
	"strings"

	"github.com/crmarques/reason/record"
	serverdomain "github.com/crmarques/reason/server"
)

// listEnvelopeKeys are the object keys, in lookup order, under which a
// wrapped list response carries its records.
var listEnvelopeKeys = []string{"items", "data"}

func extractListItems(payload any) ([]any, error) {
	switch typed := payload.(type) {
	case nil:
		return nil, nil
	case []any:
		return typed, nil
	case map[string]any:
		for _, key := range listEnvelopeKeys {
			value, ok := typed[key]
			if !ok {
				continue
			}
			items, ok := value.([]any)
			if !ok {
				return nil, serverdomain.NewListPayloadShapeError(fmt.Sprintf("list response %q must be an array", key), nil)
			}
			return items, nil
		}
		return nil, serverdomain.NewListPayloadShapeError("list response object must carry an \"items\" or \"data\" array", nil)
	default:
		return nil, serverdomain.NewListPayloadShapeError("list response must be an array of records", nil)
	}
}

// decodeListResponse keeps the server order. Duplicate ids are rejected since
// the metadata cache is keyed by id.
func decodeListResponse(body []byte) ([]record.RemoteRecord, error) {
	payload, err := decodeJSONResponse(body)
	if err != nil {
		return nil, err
	}

	items, err := extractListItems(payload)
	if err != nil {
		return nil, err
	}

	seenIDs := make(map[string]struct{}, len(items))
	list := make([]record.RemoteRecord, 0, len(items))
	for _, item := range items {
		itemMap, ok := item.(map[string]any)
		if !ok {
			return nil, serverdomain.NewListPayloadShapeError("list payload entries must be JSON objects", nil)
		}

		remote, err := record.RemoteFromMap(itemMap)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(remote.ID) == "" {
			return nil, serverdomain.NewListPayloadShapeError(
				fmt.Sprintf("list payload entry %q has no id", remote.Name),
				nil,
			)
		}
		if _, exists := seenIDs[remote.ID]; exists {
			return nil, conflictError(fmt.Sprintf("remote list contains duplicate id %q", remote.ID), nil)
		}
		seenIDs[remote.ID] = struct{}{}

		list = append(list, remote)
	}
	return list, nil
}
