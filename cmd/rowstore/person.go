package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rowstore/internal/entity"
	"rowstore/internal/service"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage person records",
}

var (
	addEmail string
	addFirst string
	addLast  string
)

var personAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Insert a new person",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, closer, err := openPeople(ctx)
		if err != nil {
			return err
		}
		defer closer()

		svc := service.NewPersonService(repo, service.NewEventBus())
		id, err := svc.Create(ctx, entity.NewPerson(addEmail, addFirst, addLast))
		if err != nil {
			return err
		}
		fmt.Printf("created person %d\n", id)
		return nil
	},
}

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all people in id order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, closer, err := openPeople(ctx)
		if err != nil {
			return err
		}
		defer closer()

		svc := service.NewPersonService(repo, service.NewEventBus())
		people, err := svc.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range people {
			fmt.Printf("%d\t%s\t%s %s\n", *p.ID, p.Email, p.FirstName, p.LastName)
		}
		return nil
	},
}

var personGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		repo, closer, err := openPeople(ctx)
		if err != nil {
			return err
		}
		defer closer()

		svc := service.NewPersonService(repo, service.NewEventBus())
		p, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s %s\n", *p.ID, p.Email, p.FirstName, p.LastName)
		return nil
	},
}

var personRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete one person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		repo, closer, err := openPeople(ctx)
		if err != nil {
			return err
		}
		defer closer()

		svc := service.NewPersonService(repo, service.NewEventBus())
		return svc.Delete(ctx, id)
	},
}

var personCopyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Duplicate one person as a new record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		repo, closer, err := openPeople(ctx)
		if err != nil {
			return err
		}
		defer closer()

		svc := service.NewPersonService(repo, service.NewEventBus())
		newID, err := svc.Duplicate(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("copied person %d to %d\n", id, newID)
		return nil
	},
}

func init() {
	personAddCmd.Flags().StringVar(&addEmail, "email", "", "email address")
	personAddCmd.Flags().StringVar(&addFirst, "first", "", "first name")
	personAddCmd.Flags().StringVar(&addLast, "last", "", "last name")
	_ = personAddCmd.MarkFlagRequired("email")
	_ = personAddCmd.MarkFlagRequired("first")
	_ = personAddCmd.MarkFlagRequired("last")

	personCmd.AddCommand(personAddCmd)
	personCmd.AddCommand(personListCmd)
	personCmd.AddCommand(personGetCmd)
	personCmd.AddCommand(personRmCmd)
	personCmd.AddCommand(personCopyCmd)
	rootCmd.AddCommand(personCmd)
}
