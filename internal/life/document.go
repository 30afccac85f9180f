package life

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

const documentField = "live_cells"

// FormatError reports a board document that cannot be decoded.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board document: %s: %v", e.Reason, e.Err)
	}
	return "board document: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

type document struct {
	LiveCells [][2]int `json:"live_cells"`
}

// Export encodes the board as {"live_cells": [[x, y], ...]} with cells in
// sorted order.
func (b *Board) Export() ([]byte, error) {
	cells := b.Cells()
	doc := document{LiveCells: make([][2]int, 0, len(cells))}
	for _, c := range cells {
		doc.LiveCells = append(doc.LiveCells, [2]int{c.X, c.Y})
	}
	data, err := json.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FromDocument decodes a board document produced by Export.
func FromDocument(data []byte, schedule *Schedule) (*Board, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Reason: "invalid json object", Err: err}
	}
	field, ok := raw[documentField]
	if !ok {
		return nil, &FormatError{Reason: fmt.Sprintf("missing %q field", documentField)}
	}

	var pairs []json.RawMessage
	if err := json.Unmarshal(field, &pairs); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("%q must be a list", documentField), Err: err}
	}
	if pairs == nil && !bytes.Equal(bytes.TrimSpace(field), []byte("[]")) {
		return nil, &FormatError{Reason: fmt.Sprintf("%q must be a list", documentField)}
	}

	board := NewBoard(schedule)
	for i, pair := range pairs {
		var xy []int
		if err := json.Unmarshal(pair, &xy); err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("cell %d is not an integer pair", i), Err: err}
		}
		if len(xy) != 2 {
			return nil, &FormatError{Reason: fmt.Sprintf("cell %d has %d coordinates", i, len(xy))}
		}
		board.cells[Cell{xy[0], xy[1]}] = struct{}{}
	}
	return board, nil
}

func ReadDocumentFile(path string, schedule *Schedule) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	board, err := FromDocument(data, schedule)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return board, nil
}

func WriteDocumentFile(path string, board *Board) error {
	data, err := board.Export()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
