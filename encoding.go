package ddrouter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// encodeParameters applies a payload to the draft request: params are merged
// into the URL query and the body is serialized per its Encoding. It only
// touches the draft and the payload.
func encodeParameters[P any](draft *WireRequest, p Payload) error {
	switch p.Kind {
	case PayloadNone:
		return nil

	case PayloadBodyAndQuery:
		if len(p.Params) > 0 {
			if draft.URL == nil {
				return newAPIError[P](KindInternal, errors.New("cannot merge query parameters without a URL"))
			}
			draft.URL.RawQuery = mergeQuery(draft.URL.RawQuery, p.Params)
		}

		if p.Body == nil {
			return nil
		}

		var (
			body []byte
			err  error
		)
		switch p.Encoding {
		case EncodingJSON:
			body, err = encodeJSON(p.Body)
		case EncodingURL:
			body, err = encodeForm(p.Body)
		default:
			err = fmt.Errorf("unsupported encoding %d", int(p.Encoding))
		}
		if err != nil {
			return newAPIError[P](KindSerialize, err)
		}
		draft.Body = body
		return nil

	default:
		return newAPIError[P](KindInternal, fmt.Errorf("unknown payload kind %d", int(p.Kind)))
	}
}

// mergeQuery appends params, sorted by key, after the existing raw query.
func mergeQuery(rawQuery string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make(Query, 0, len(keys))
	for _, key := range keys {
		items = append(items, QueryItem{Name: key, Value: fmt.Sprint(params[key])})
	}

	encoded := items.Encode()
	if rawQuery == "" {
		return encoded
	}
	return rawQuery + "&" + encoded
}

func encodeJSON(body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("json encode body: %w", err)
	}
	return data, nil
}

// encodeForm flattens body through its JSON representation. Every value of
// the resulting object must be a string.
func encodeForm(body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("form encode body: %w", err)
	}

	var table map[string]any
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("form encode body: not an object: %w", err)
	}
	if table == nil {
		return nil, errors.New("form encode body: not an object")
	}

	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		value, ok := table[key].(string)
		if !ok {
			return nil, fmt.Errorf("form encode body: value of %q is %T, not a string", key, table[key])
		}
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}
	return []byte(strings.Join(pairs, "&")), nil
}
