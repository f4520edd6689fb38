package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kartoza/heart-risk/internal/config"
	"github.com/kartoza/heart-risk/internal/logging"
	"github.com/kartoza/heart-risk/internal/model"
	"github.com/kartoza/heart-risk/internal/predict"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	flagInput  = "input"
	flagFormat = "format"

	formatJSON = "json"
	formatYAML = "yaml"
)

var errNotAnObject = errors.New("input must be an object of patient fields")

func predictCmd() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict risk for a single patient file without starting the server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagModel,
				Aliases: []string{"m"},
				Usage:   "Path to the model artifact (.json, .yaml)",
				Value:   config.DefaultModelPath,
				Sources: cli.EnvVars("HEART_RISK_MODEL"),
			},
			&cli.StringFlag{
				Name:     flagInput,
				Aliases:  []string{"i"},
				Usage:    "Patient file (.json, .yaml), - reads JSON from stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:  flagFormat,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
		},
		Action: runPredict,
	}
}

func runPredict(ctx context.Context, c *cli.Command) error {
	format, err := outputFormat(c.String(flagFormat))
	if err != nil {
		return err
	}

	m, err := model.Load(c.String(flagModel))
	if err != nil {
		return err
	}

	payload, err := readPayload(c.String(flagInput), c.Root().Reader)
	if err != nil {
		return err
	}

	logger := logging.New(config.LogConfig{Level: c.String(flagLogLevel)})
	defer logger.Sync() //nolint:errcheck

	svc, err := predict.NewService(m, 0, logger)
	if err != nil {
		return err
	}

	res, err := svc.PredictPayload(ctx, payload)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	return encode(c.Root().Writer, format, res.Response())
}

func outputFormat(f string) (string, error) {
	switch strings.ToLower(f) {
	case formatJSON, "":
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", f)
	}
}

// readPayload decodes a patient file. YAML is chosen by extension,
// everything else is read as JSON.
func readPayload(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var payload map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse input %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to parse input %s: %w", path, err)
		}
	}

	if payload == nil {
		return nil, errNotAnObject
	}
	return payload, nil
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
