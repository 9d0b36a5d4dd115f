package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// payloadFlags gathers a JSON object from --data, --from-file, and
// repeated --set key=value pairs, applied in that order.
type payloadFlags struct {
	data     string
	fromFile string
	set      []string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.data, "data", "", "JSON object with the fields to send")
	cmd.Flags().StringVar(&p.fromFile, "from-file", "", "Read the JSON object from a file (- for stdin)")
	cmd.Flags().StringArrayVar(&p.set, "set", nil, "Set one field as key=value (repeatable)")
}

func (p *payloadFlags) empty() bool {
	return strings.TrimSpace(p.data) == "" && strings.TrimSpace(p.fromFile) == "" && len(p.set) == 0
}

func (p *payloadFlags) object(stdin io.Reader) (map[string]any, error) {
	out := map[string]any{}
	if path := strings.TrimSpace(p.fromFile); path != "" {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := decodeObject(data, out); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if data := strings.TrimSpace(p.data); data != "" {
		if err := decodeObject([]byte(data), out); err != nil {
			return nil, fmt.Errorf("parse --data: %w", err)
		}
	}
	for _, pair := range p.set {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want key=value", pair)
		}
		out[key] = parseScalar(value)
	}
	return out, nil
}

// decode unmarshals the gathered object into a typed value.
func (p *payloadFlags) decode(stdin io.Reader, dst any) error {
	obj, err := p.object(stdin)
	if err != nil {
		return err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid fields: %w", err)
	}
	return nil
}

func decodeObject(data []byte, into map[string]any) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("expected a JSON object")
	}
	for key, value := range obj {
		into[key] = value
	}
	return nil
}

// parseScalar keeps JSON literals typed and treats everything else as a
// string, so --set active=true sends a boolean.
func parseScalar(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
		return decoded
	}
	return value
}

func splitIDs(args []string) []string {
	var ids []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if id := strings.TrimSpace(part); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
