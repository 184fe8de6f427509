package client

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"

	"github.com/GriffinCanCode/tinify/apierror"
)

const jsonContentType = "application/json"

// jsonAPI sorts map keys so command bodies are byte-for-byte stable.
var jsonAPI = sonic.ConfigStd

// encodeBody turns a call body into bytes and a content type. A nil result
// means the request carries no body.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		if len(b) == 0 {
			return nil, "", nil
		}
		return b, mimetype.Detect(b).String(), nil
	case map[string]any:
		if len(b) == 0 {
			return nil, "", nil
		}
		return marshal(b)
	default:
		return marshal(b)
	}
}

func marshal(v any) ([]byte, string, error) {
	data, err := jsonAPI.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return data, jsonContentType, nil
}

// decodeError classifies a non-2xx response. A body that is not a JSON
// object is reported as a ParseError carrying the raw body. Non-string
// field values are kept in their printed form.
func decodeError(status int, body []byte) *apierror.Error {
	var details map[string]any
	if err := jsonAPI.Unmarshal(body, &details); err != nil {
		return apierror.Classify(status, "ParseError",
			fmt.Sprintf("Error while parsing response: %v in '%s'", err, body))
	}
	return apierror.Classify(status, field(details, "error"), field(details, "message"))
}

func field(details map[string]any, key string) string {
	switch v := details[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
