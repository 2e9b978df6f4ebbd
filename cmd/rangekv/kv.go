package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errKeyNotFound = errors.New("key not found")

func getCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, s *session) error {
			key, err := s.codec.decode(args[0])
			if err != nil {
				return err
			}

			value, found, err := s.store.Get(key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", errKeyNotFound, args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.codec.encode(value))
			return err
		}),
	}
}

func hasCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "has KEY",
		Short: "Report whether a key is present",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, s *session) error {
			key, err := s.codec.decode(args[0])
			if err != nil {
				return err
			}

			ok, err := s.store.Has(key)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
			return err
		}),
	}
}

func putCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "put KEY VALUE",
		Short: "Store a value under a key, replacing any previous value",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, args []string, s *session) error {
			key, err := s.codec.decode(args[0])
			if err != nil {
				return err
			}
			value, err := s.codec.decode(args[1])
			if err != nil {
				return err
			}

			return s.store.Put(key, value)
		}),
	}
}

func deleteCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:     "delete KEY",
		Aliases: []string{"del"},
		Short:   "Remove a key; removing a missing key is not an error",
		Args:    cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, s *session) error {
			key, err := s.codec.decode(args[0])
			if err != nil {
				return err
			}

			return s.store.Delete(key)
		}),
	}
}
