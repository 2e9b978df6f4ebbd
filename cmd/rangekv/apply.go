package main

import (
	"fmt"
	"os"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/validator"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	opPut    = "put"
	opDelete = "delete"
)

// batchOp is one entry of an apply file.
type batchOp struct {
	Op    string  `yaml:"op" validate:"oneof=put delete"`
	Key   string  `yaml:"key"`
	Value *string `yaml:"value" validate:"required_if=Op put,excluded_if=Op delete"`
}

func readBatchFile(path string) ([]batchOp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ops []batchOp
	if err := yaml.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range ops {
		if err := validator.Validator().Struct(ops[i]); err != nil {
			return nil, fmt.Errorf("%s: operation %d: %w", path, i, err)
		}
	}
	return ops, nil
}

func applyCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "apply FILE",
		Short: "Apply a YAML list of put and delete operations as one atomic batch",
		Long: `Each operation is a mapping with the fields op (put or delete), key and, for puts, value.
Either every operation is applied or none is.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, s *session) error {
			ops, err := readBatchFile(args[0])
			if err != nil {
				return err
			}

			var size int
			err = db.Update(s.store, func(w *db.BatchWriter) error {
				for _, op := range ops {
					key, err := s.codec.decode(op.Key)
					if err != nil {
						return err
					}
					switch op.Op {
					case opPut:
						value, err := s.codec.decode(*op.Value)
						if err != nil {
							return err
						}
						if err := w.Put(key, value); err != nil {
							return err
						}
					case opDelete:
						if err := w.Delete(key); err != nil {
							return err
						}
					}
				}
				size = w.Size()
				return nil
			})
			if err != nil {
				return err
			}

			s.log.Infow("Applied batch", "operations", len(ops), "bytes", size)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied %d operations\n", len(ops))
			return err
		}),
	}
}
