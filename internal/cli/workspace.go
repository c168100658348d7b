package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"progresshub/internal/client"
	"progresshub/internal/domain"
)

const dateLayout = "2006-01-02"

func newProjectCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectCreateCommand(rt))
	cmd.AddCommand(newProjectUpdateCommand(rt))
	cmd.AddCommand(newProjectListCommand(rt))
	return cmd
}

func newProjectCreateCommand(rt *runtime) *cobra.Command {
	var description, due string
	var progress int
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/projects"); err != nil {
				return err
			}
			in := client.NewProject{Name: args[0], Description: description, Progress: progress}
			if due != "" {
				t, err := time.Parse(dateLayout, due)
				if err != nil {
					return fmt.Errorf("invalid --due %q: want YYYY-MM-DD", due)
				}
				in.DueDate = &t
			}
			if _, err := rt.app.Remote.CreateProject(cmd.Context(), in); err != nil {
				return rt.fail("Failed to create project", err)
			}
			rt.notify("Project created", args[0])
			return listProjects(rt, cmd)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().IntVar(&progress, "progress", 0, "progress percentage (0-100)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newProjectUpdateCommand(rt *runtime) *cobra.Command {
	var description, due string
	var progress int
	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project's description, progress or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/projects"); err != nil {
				return err
			}
			var patch client.ProjectPatch
			flags := cmd.Flags()
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("progress") {
				patch.Progress = &progress
			}
			if flags.Changed("due") {
				t, err := time.Parse(dateLayout, due)
				if err != nil {
					return fmt.Errorf("invalid --due %q: want YYYY-MM-DD", due)
				}
				patch.DueDate = &t
			}
			if _, err := rt.app.Remote.UpdateProject(cmd.Context(), args[0], patch); err != nil {
				return rt.fail("Failed to update project", err)
			}
			rt.notify("Project updated", "")
			return listProjects(rt, cmd)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().IntVar(&progress, "progress", 0, "progress percentage (0-100)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newProjectListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/projects"); err != nil {
				return err
			}
			return listProjects(rt, cmd)
		},
	}
}

func listProjects(rt *runtime, cmd *cobra.Command) error {
	projects, err := rt.app.Remote.Projects(cmd.Context())
	if err != nil {
		return rt.fail("Failed to load projects", err)
	}
	p := rt.printer(cmd)
	p.heading("Projects")
	return p.projects(projects)
}

func newDocumentCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Manage documents",
	}
	cmd.AddCommand(newDocumentCreateCommand(rt))
	cmd.AddCommand(newDocumentListCommand(rt))
	return cmd
}

func newDocumentCreateCommand(rt *runtime) *cobra.Command {
	var projectID, docType string
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Add a document to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/documents"); err != nil {
				return err
			}
			in := client.NewDocument{ProjectID: projectID, Title: args[0], Type: docType}
			if _, err := rt.app.Remote.CreateDocument(cmd.Context(), in); err != nil {
				return rt.fail("Failed to upload document", err)
			}
			rt.notify("Document uploaded", args[0])
			return listDocuments(rt, cmd, projectID)
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringVar(&docType, "type", "doc", "document type (doc|sheet|pdf|image)")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newDocumentListCommand(rt *runtime) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/documents"); err != nil {
				return err
			}
			return listDocuments(rt, cmd, projectID)
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "only documents of this project")
	return cmd
}

func listDocuments(rt *runtime, cmd *cobra.Command, projectID string) error {
	var docs []domain.Document
	var err error
	if projectID != "" {
		docs, err = rt.app.Remote.ProjectDocuments(cmd.Context(), projectID)
	} else {
		docs, err = rt.app.Remote.Documents(cmd.Context())
	}
	if err != nil {
		return rt.fail("Failed to load documents", err)
	}
	p := rt.printer(cmd)
	p.heading("Documents")
	return p.documents(docs)
}
