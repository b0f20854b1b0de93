package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/acoustic-print/internal/core/fingerprint"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatCSV  = "csv"
)

func writeValue(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case formatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// writePrintCSV writes one row per point, dynamics first.
func writePrintCSV(w io.Writer, p fingerprint.Print) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"category", "attribute", "x", "y", "z"}); err != nil {
		return err
	}
	for _, part := range []struct {
		category fingerprint.Category
		points   []fingerprint.Point
	}{
		{fingerprint.Dynamics, p.Dynamics},
		{fingerprint.Articulation, p.Articulation},
	} {
		for _, pt := range part.points {
			if err := cw.Write([]string{
				string(part.category),
				string(pt.Attribute),
				strconv.FormatFloat(pt.X, 'g', -1, 64),
				strconv.FormatFloat(pt.Y, 'g', -1, 64),
				strconv.FormatFloat(pt.Z, 'g', -1, 64),
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
