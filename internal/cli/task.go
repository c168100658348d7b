package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"progresshub/internal/client"
)

var errMissingProject = errors.New("--project is required")

func newTaskCommand(rt *runtime) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Project task board",
	}
	cmd.PersistentFlags().StringVar(&projectID, "project", "", "project id")

	var description, assignee, status string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to the project board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/projects"); err != nil {
				return err
			}
			if projectID == "" {
				return errMissingProject
			}
			in := client.NewTask{Title: args[0], Description: description, Assignee: assignee, Status: status}
			if _, err := rt.app.Remote.CreateTask(cmd.Context(), projectID, in); err != nil {
				return rt.fail("Failed to add task", err)
			}
			rt.notify("Task added", args[0])
			return showBoard(rt, cmd, projectID)
		},
	}
	add.Flags().StringVar(&description, "description", "", "task description")
	add.Flags().StringVar(&assignee, "assignee", "", "who works on it")
	add.Flags().StringVar(&status, "status", "", "initial status (todo|in-progress|done)")

	board := &cobra.Command{
		Use:     "board",
		Aliases: []string{"list"},
		Short:   "Show the project board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/projects"); err != nil {
				return err
			}
			if projectID == "" {
				return errMissingProject
			}
			return showBoard(rt, cmd, projectID)
		},
	}

	move := &cobra.Command{
		Use:   "move <task-id> <todo|in-progress|done>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/projects"); err != nil {
				return err
			}
			task, err := rt.app.Remote.MoveTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return rt.fail("Failed to move task", err)
			}
			return showBoard(rt, cmd, task.ProjectID)
		},
	}

	del := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/projects"); err != nil {
				return err
			}
			if err := rt.app.Remote.DeleteTask(cmd.Context(), args[0]); err != nil {
				return rt.fail("Failed to delete task", err)
			}
			rt.notify("Task deleted", "")
			if projectID == "" {
				return nil
			}
			return showBoard(rt, cmd, projectID)
		},
	}

	cmd.AddCommand(add, board, move, del)
	return cmd
}

func showBoard(rt *runtime, cmd *cobra.Command, projectID string) error {
	board, err := rt.app.Remote.TaskBoard(cmd.Context(), projectID)
	if err != nil {
		return rt.fail("Failed to load tasks", err)
	}
	return rt.printer(cmd).board(board)
}
