package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	stderrors "errors" // Standard errors package

	json "github.com/goccy/go-json"

	"github.com/mcncl/mapdata/internal/errors" // Custom errors package
	"github.com/mcncl/mapdata/internal/models"
)

// Parse reads exactly one JSON document from reader and converts it into a
// models.Value tree.
func Parse(reader io.Reader) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a single JSON document held in memory.
func ParseBytes(data []byte) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Keep number literals intact

	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		if stderrors.As(err, &syntaxError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.As(err, &unmarshalTypeError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON type error at offset %d for type %s", unmarshalTypeError.Offset, unmarshalTypeError.Type),
				errors.ErrInvalidJSON,
			)
		}
		return nil, errors.NewParsingError("failed to decode JSON", stderrors.Join(errors.ErrInvalidJSON, err))
	}

	// Anything other than whitespace after the first value is rejected.
	if decoder.More() {
		var trailingValue interface{}
		if err := decoder.Decode(&trailingValue); err != nil {
			if !stderrors.Is(err, io.EOF) {
				return nil, errors.NewParsingError("invalid trailing data after first JSON value", stderrors.Join(errors.ErrInvalidJSON, err))
			}
		} else {
			return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
	}

	return models.FromInterface(raw), nil
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Value, error) {
	if filePath == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		// Check if the file doesn't exist
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewIOError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return ParseBytes(data)
}

// ParseDocument parses root/rel and returns it as a Document keyed by rel.
func ParseDocument(root, rel string) (models.Document, error) {
	value, err := ParseFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{Path: rel, Root: value}, nil
}
