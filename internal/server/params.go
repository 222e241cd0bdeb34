package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

// params reads named fields from either a JSON object body or a form
// body, whichever the request carries.
type params struct {
	r      *http.Request
	fields map[string]json.RawMessage
	isJSON bool
}

func readParams(w http.ResponseWriter, r *http.Request) (*params, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mt := mediaType(r)
	p := &params{r: r, isJSON: mt == "application/json"}
	switch {
	case mt == "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, eris.Wrap(err, "server: parse multipart form")
		}
		return p, nil
	case !p.isJSON:
		if err := r.ParseForm(); err != nil {
			return nil, eris.Wrap(err, "server: parse form")
		}
		return p, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, eris.Wrap(err, "server: read body")
	}
	if len(body) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(body, &p.fields); err != nil {
		return nil, eris.Wrap(err, "server: decode json body")
	}
	return p, nil
}

// String returns the field as a string. A JSON field that is not a string
// reads as "".
func (p *params) String(key string) string {
	if !p.isJSON {
		return p.r.PostForm.Get(key)
	}
	raw, ok := p.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Raw returns the field's JSON. Form fields are expected to hold a JSON
// document as text. Missing fields return nil.
func (p *params) Raw(key string) []byte {
	if !p.isJSON {
		v := p.r.PostForm.Get(key)
		if v == "" {
			return nil
		}
		return []byte(v)
	}
	return p.fields[key]
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

// writeError reports a failure in the response envelope. Failures are sent
// with status 200 so clients only need to inspect "success".
func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, map[string]any{"success": false, "error": msg})
}
