package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"chalk/internal/coursedir"
	"chalk/internal/gradebook"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and manage the course database",
	}

	dbCmd.AddCommand(newDBAssignmentCommand(ctx))
	dbCmd.AddCommand(newDBStudentCommand(ctx))

	return dbCmd
}

func (c *commandContext) withGradebook(fn func(*gradebook.Gradebook) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	return gradebook.With(cfg.DatabasePath(), fn)
}

func newDBAssignmentCommand(ctx *commandContext) *cobra.Command {
	assignmentCmd := &cobra.Command{
		Use:   "assignment",
		Short: "Manage assignment records",
	}

	var dueFlag string
	addCmd := &cobra.Command{
		Use:   "add <assignment>",
		Short: "Register or update an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var due *time.Time
			if dueFlag != "" {
				parsed, err := time.Parse(coursedir.TimestampLayout, dueFlag)
				if err != nil {
					return fmt.Errorf("parse --due %q (want %s): %w", dueFlag, coursedir.TimestampLayout, err)
				}
				due = &parsed
			}
			return ctx.withGradebook(func(gb *gradebook.Gradebook) error {
				cfg, _ := ctx.ensureConfig()
				assignment, err := gb.UpdateOrCreateAssignment(cmd.Context(), args[0], cfg.Course.ID, due)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered assignment %s\n", assignment.Name)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&dueFlag, "due", "", "Due date, formatted "+coursedir.TimestampLayout)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withGradebook(func(gb *gradebook.Gradebook) error {
				assignments, err := gb.ListAssignments(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(assignments))
				for _, a := range assignments {
					due := "-"
					if a.DueDate != nil {
						due = a.DueDate.Format(coursedir.TimestampLayout)
					}
					count, err := gb.SubmissionCount(cmd.Context(), a.Name)
					if err != nil {
						return err
					}
					rows = append(rows, []string{a.Name, a.CourseID, due, strconv.Itoa(count)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Assignment", "Course", "Due", "Submissions"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <assignment>",
		Short: "Remove an assignment and its dependent records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withGradebook(func(gb *gradebook.Gradebook) error {
				if err := gb.RemoveAssignment(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed assignment %s\n", args[0])
				return nil
			})
		},
	}

	assignmentCmd.AddCommand(addCmd)
	assignmentCmd.AddCommand(listCmd)
	assignmentCmd.AddCommand(removeCmd)
	return assignmentCmd
}

func newDBStudentCommand(ctx *commandContext) *cobra.Command {
	studentCmd := &cobra.Command{
		Use:   "student",
		Short: "Manage student records",
	}

	var firstName, lastName, email string
	addCmd := &cobra.Command{
		Use:   "add <student-id>",
		Short: "Register or update a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withGradebook(func(gb *gradebook.Gradebook) error {
				student, err := gb.UpdateOrCreateStudent(cmd.Context(), gradebook.Student{
					ID:        args[0],
					FirstName: firstName,
					LastName:  lastName,
					Email:     email,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered student %s\n", student.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&firstName, "first-name", "", "Student first name")
	addCmd.Flags().StringVar(&lastName, "last-name", "", "Student last name")
	addCmd.Flags().StringVar(&email, "email", "", "Student email address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withGradebook(func(gb *gradebook.Gradebook) error {
				students, err := gb.ListStudents(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(students))
				for _, s := range students {
					rows = append(rows, []string{s.ID, s.FirstName, s.LastName, s.Email})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "First", "Last", "Email"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <student-id>",
		Short: "Remove a student and their submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withGradebook(func(gb *gradebook.Gradebook) error {
				if err := gb.RemoveStudent(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed student %s\n", args[0])
				return nil
			})
		},
	}

	studentCmd.AddCommand(addCmd)
	studentCmd.AddCommand(listCmd)
	studentCmd.AddCommand(removeCmd)
	return studentCmd
}
