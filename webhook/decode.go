package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/tpp-lora/lora-app-sheets/logsheet"
)

// Decode extracts the event parameters from the query string and, for POST requests,
// from a form or JSON body. A request that cannot be decoded returns a record with Err
// set and whatever part of the body could be read.
func Decode(r *http.Request, maxBody int64) logsheet.Record {
	params := first(r.URL.Query())

	if r.Body == nil || r.Method == http.MethodGet {
		return logsheet.NewRecord(params, "")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return logsheet.Record{Body: string(body), Err: fmt.Errorf("error reading request body (%w)", err)}
	} else if int64(len(body)) > maxBody {
		return logsheet.Record{Body: string(body[:maxBody]), Err: fmt.Errorf("request body exceeds %v bytes", maxBody)}
	}

	if len(body) == 0 {
		return logsheet.NewRecord(params, "")
	}

	var fields map[string]string

	mediatype, mediaparams, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediatype {
	case "application/json":
		fields, err = decodeJSON(body)

	case "application/x-www-form-urlencoded":
		fields, err = decodeForm(body)

	case "multipart/form-data":
		fields, err = decodeMultipart(body, mediaparams["boundary"], maxBody)
	}

	if err != nil {
		return logsheet.Record{Body: string(body), Err: err}
	}

	for k, v := range fields {
		params[k] = v
	}

	return logsheet.NewRecord(params, string(body))
}

func decodeJSON(body []byte) (map[string]string, error) {
	var object map[string]any

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	if err := decoder.Decode(&object); err != nil {
		return nil, fmt.Errorf("invalid JSON request body (%w)", err)
	} else if object == nil {
		return nil, fmt.Errorf("invalid JSON request body - expected an object")
	} else if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid JSON request body - trailing data after object")
	}

	fields := map[string]string{}
	for k, v := range object {
		switch value := v.(type) {
		case nil:

		case string:
			fields[k] = value

		case json.Number, bool:
			fields[k] = fmt.Sprintf("%v", value)

		default:
			if b, err := json.Marshal(value); err != nil {
				return nil, fmt.Errorf("invalid JSON field '%v' (%w)", k, err)
			} else {
				fields[k] = string(b)
			}
		}
	}

	return fields, nil
}

func decodeForm(body []byte) (map[string]string, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("invalid form request body (%w)", err)
	}

	return first(values), nil
}

func decodeMultipart(body []byte, boundary string, maxBody int64) (map[string]string, error) {
	if boundary == "" {
		return nil, fmt.Errorf("invalid multipart request body - missing boundary")
	}

	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxBody)
	if err != nil {
		return nil, fmt.Errorf("invalid multipart request body (%w)", err)
	}

	defer form.RemoveAll()

	return first(form.Value), nil
}

func first(values map[string][]string) map[string]string {
	fields := map[string]string{}
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}

	return fields
}
