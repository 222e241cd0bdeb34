package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// writeOutput renders v as indented JSON or as YAML. YAML goes through the
// JSON encoding first so custom marshalers (ratings, results) apply.
func writeOutput(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: encode json")
	}

	switch format {
	case "", "json":
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return eris.Wrap(err, "output: decode json")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return eris.Wrap(err, "output: encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("output: unknown format %q (want json or yaml)", format)
	}
}
