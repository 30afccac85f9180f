package storage

import (
	"encoding/json"
	"fmt"

	"lifeforge/internal/model"
)

func EncodeRun(r model.Run) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.Run, error) {
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}
	if run.ID == "" {
		return model.Run{}, fmt.Errorf("run record is missing an id")
	}
	return run, nil
}

func EncodeEpochHistory(history []model.EpochDiagnostics) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeEpochHistory(data []byte) ([]model.EpochDiagnostics, error) {
	var history []model.EpochDiagnostics
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodePopulation(p model.PopulationSnapshot) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePopulation(data []byte) (model.PopulationSnapshot, error) {
	var snapshot model.PopulationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.PopulationSnapshot{}, err
	}
	if len(snapshot.Boards) == 0 {
		return model.PopulationSnapshot{}, fmt.Errorf("population snapshot %s has no boards", snapshot.ID)
	}
	return snapshot, nil
}

func EncodeBoard(b model.BoardRecord) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBoard(data []byte) (model.BoardRecord, error) {
	var board model.BoardRecord
	if err := json.Unmarshal(data, &board); err != nil {
		return model.BoardRecord{}, err
	}
	return board, nil
}

func copyHistory(history []model.EpochDiagnostics) []model.EpochDiagnostics {
	return append([]model.EpochDiagnostics(nil), history...)
}

func copyBoard(b model.BoardRecord) model.BoardRecord {
	b.LiveCells = append([][2]int(nil), b.LiveCells...)
	return b
}

func copyPopulation(p model.PopulationSnapshot) model.PopulationSnapshot {
	boards := make([]model.BoardRecord, len(p.Boards))
	for i, b := range p.Boards {
		boards[i] = copyBoard(b)
	}
	p.Boards = boards
	return p
}
