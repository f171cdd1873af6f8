package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cellscript/typedtx/pkg/vm"
)

// txFixture is the JSON description of a simulated transaction. All
// byte fields are hex-encoded.
type txFixture struct {
	Hash         string              `json:"hash"`
	Raw          string              `json:"raw,omitempty"`
	Sinces       []uint64            `json:"sinces"`
	Witnesses    []string            `json:"witnesses"`
	Group        []uint32            `json:"group"`
	GroupOutputs []uint32            `json:"group_outputs,omitempty"`
	CellData     map[string][]string `json:"cell_data,omitempty"`
}

var fixtureSources = map[string]vm.Source{
	"input":      vm.SourceInput,
	"output":     vm.SourceOutput,
	"cell_dep":   vm.SourceCellDep,
	"header_dep": vm.SourceHeaderDep,
}

// loadFixture reads a transaction fixture file into a MockTransaction.
func loadFixture(path string) (*vm.MockTransaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fixture txFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	tx := &vm.MockTransaction{
		Sinces:       fixture.Sinces,
		Group:        fixture.Group,
		GroupOutputs: fixture.GroupOutputs,
	}

	hash, err := hexField("hash", fixture.Hash)
	if err != nil {
		return nil, err
	}
	if len(hash) != 32 {
		return nil, fmt.Errorf("fixture hash is %d bytes, expected 32", len(hash))
	}
	copy(tx.Hash[:], hash)

	if fixture.Raw != "" {
		if tx.Raw, err = hexField("raw", fixture.Raw); err != nil {
			return nil, err
		}
	}

	for i, w := range fixture.Witnesses {
		witness, err := hexField(fmt.Sprintf("witnesses[%d]", i), w)
		if err != nil {
			return nil, err
		}
		tx.Witnesses = append(tx.Witnesses, witness)
	}

	if len(fixture.CellData) > 0 {
		tx.CellData = make(map[vm.Source][][]byte)
		for name, cells := range fixture.CellData {
			source, ok := fixtureSources[name]
			if !ok {
				return nil, fmt.Errorf("unknown cell_data region %q", name)
			}
			for i, c := range cells {
				cell, err := hexField(fmt.Sprintf("cell_data.%s[%d]", name, i), c)
				if err != nil {
					return nil, err
				}
				tx.CellData[source] = append(tx.CellData[source], cell)
			}
		}
	}

	return tx, nil
}

func hexField(name, value string) ([]byte, error) {
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("fixture field %s: %w", name, err)
	}
	return b, nil
}
