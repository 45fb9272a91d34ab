package ddrouter

import (
	"encoding/json"
	"net/http"
)

// classify maps a status code and response body to either the success
// payload or an *APIError[P]. Exactly one of the results is non-nil.
func classify[P any](statusCode int, body []byte) ([]byte, error) {
	switch {
	case statusCode == http.StatusNoContent:
		return nonNilBytes(body), nil

	case statusCode >= 200 && statusCode <= 299:
		return nonNilBytes(body), nil

	case statusCode >= 400 && statusCode <= 499:
		return nil, classifyClientError[P](statusCode, body)

	case statusCode >= 500 && statusCode <= 599:
		if statusCode == http.StatusServiceUnavailable {
			return nil, statusError[P](KindServiceUnavailable, statusCode, nil)
		}
		return nil, statusError[P](KindServerError, statusCode, decodeErrorBody[P](body))

	default:
		return nil, statusError[P](KindUnknown, statusCode, nil)
	}
}

func classifyClientError[P any](statusCode int, body []byte) error {
	// codes without a registered status text are reported without a payload
	if http.StatusText(statusCode) == "" {
		return statusError[P](KindUnknown, statusCode, nil)
	}

	switch statusCode {
	case http.StatusBadRequest:
		return statusError[P](KindBadRequest, statusCode, decodeErrorBody[P](body))

	case http.StatusUnauthorized:
		// token refresh and retry would hook in here; nothing is retried
		return statusError[P](KindUnauthorized, statusCode, decodeErrorBody[P](body))

	case http.StatusForbidden:
		return statusError[P](KindForbidden, statusCode, decodeErrorBody[P](body))

	case http.StatusNotFound:
		return statusError[P](KindNotFound, statusCode, nil)

	case http.StatusTooManyRequests:
		return statusError[P](KindTooManyRequests, statusCode, nil)

	default:
		return statusError[P](KindUnknown, statusCode, decodeErrorBody[P](body))
	}
}

func statusError[P any](kind ErrorKind, statusCode int, payload *P) *APIError[P] {
	return &APIError[P]{
		Kind:       kind,
		StatusCode: statusCode,
		Payload:    payload,
	}
}

// decodeErrorBody is the best-effort decode of an error body. It never fails:
// an undecodable body yields nil.
func decodeErrorBody[P any](body []byte) *P {
	if len(body) == 0 {
		return nil
	}
	var payload P
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return &payload
}

// nonNilBytes replaces a nil slice with an empty one so a success result is
// never confused with an absent one.
func nonNilBytes(body []byte) []byte {
	if body == nil {
		return []byte{}
	}
	return body
}
