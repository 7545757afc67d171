package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"taskdesk/config"
	"taskdesk/models"
	"taskdesk/tasks"
	"taskdesk/utilities"

	"github.com/spf13/cobra"
)

var Version = "dev"

const deadlineLayout = "2006-01-02 15:04"

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Taskdesk - sessão e tarefas com armazenamento local",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
			utilities.InitLogger(cfg.LogLevel)
			if cmd.Name() != "serve" {
				// a saída do comando vai para stdout; logs ficam no stderr
				utilities.SetOutput(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	getConfig := func() *config.Config { return cfg }

	rootCmd.AddCommand(serveCmd(getConfig))
	rootCmd.AddCommand(loginCmd(getConfig))
	rootCmd.AddCommand(registerCmd(getConfig))
	rootCmd.AddCommand(logoutCmd(getConfig))
	rootCmd.AddCommand(whoamiCmd(getConfig))
	rootCmd.AddCommand(taskCmd(getConfig))

	return rootCmd
}

// withApp abre a aplicação, executa fn e fecha o armazenamento.
func withApp(cmd *cobra.Command, getConfig func() *config.Config, fn func(ctx context.Context, app *application) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := newApplication(ctx, getConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			utilities.LogError(err, "Erro ao fechar armazenamento")
		}
	}()

	return fn(ctx, app)
}

func serveCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				return serve(ctx, app.App, app.cfg)
			})
		},
	}
}

func loginCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				if !app.Sessions.Login(ctx, email, password) {
					return fmt.Errorf("login failed")
				}
				printProfile(cmd.OutOrStdout(), "Signed in as", app)
				return nil
			})
		},
	}

	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("password", "p", "", "Account password")

	return cmd
}

func registerCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("name, email and password are required")
			}

			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				if !app.Sessions.Register(ctx, name, email, password) {
					return fmt.Errorf("registration failed")
				}
				printProfile(cmd.OutOrStdout(), "Registered", app)
				return nil
			})
		},
	}

	cmd.Flags().StringP("name", "n", "", "Display name")
	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("password", "p", "", "Account password")

	return cmd
}

func logoutCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				if !app.Sessions.Logout(ctx) {
					return fmt.Errorf("logout failed")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func whoamiCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				if !app.Sessions.Authenticated() {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				printProfile(cmd.OutOrStdout(), "Signed in as", app)
				return nil
			})
		},
	}
}

func printProfile(w io.Writer, prefix string, app *application) {
	profile, _ := app.Sessions.Profile()
	fmt.Fprintf(w, "%s %s <%s> (role: %s, id: %s)\n", prefix, profile.Name, profile.Email, profile.Role, profile.ID)
}

func taskCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(taskAddCmd(getConfig))
	cmd.AddCommand(taskListCmd(getConfig))
	cmd.AddCommand(taskUpdateCmd(getConfig))
	cmd.AddCommand(taskDeleteCmd(getConfig))
	cmd.AddCommand(taskStatsCmd(getConfig))
	cmd.AddCommand(taskExpireCmd(getConfig))

	return cmd
}

// parseDeadline aceita RFC3339, "2006-01-02 15:04", "2006-01-02" ou uma duração a partir de now ("48h").
func parseDeadline(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(d), nil
	}
	for _, layout := range []string{time.RFC3339, deadlineLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q", value)
}

func taskAddCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return fmt.Errorf("title is required")
			}

			flags := cmd.Flags()
			description, _ := flags.GetString("description")
			priorityFlag, _ := flags.GetString("priority")
			statusFlag, _ := flags.GetString("status")
			deadlineFlag, _ := flags.GetString("deadline")
			assigneeID, _ := flags.GetString("assignee-id")
			assigneeName, _ := flags.GetString("assignee-name")

			priority, ok := models.ParsePriority(priorityFlag)
			if !ok {
				return fmt.Errorf("invalid priority %q", priorityFlag)
			}
			status, ok := models.ParseStatus(statusFlag)
			if !ok {
				return fmt.Errorf("invalid status %q", statusFlag)
			}

			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				deadline, err := parseDeadline(deadlineFlag, app.Tasks.Now())
				if err != nil {
					return err
				}

				assignee := models.Assignee{ID: assigneeID, Name: assigneeName}
				if assignee.ID == "" {
					profile, ok := app.Sessions.Profile()
					if !ok {
						return fmt.Errorf("--assignee-id is required when not signed in")
					}
					assignee = profile.Assignee()
				}

				task, ok := app.Tasks.Add(ctx, models.TaskDraft{
					Title:       title,
					Description: description,
					Priority:    priority,
					Status:      status,
					Deadline:    deadline,
					AssignedTo:  assignee,
				})
				if !ok {
					return fmt.Errorf("failed to create task")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringP("description", "d", "", "Task description")
	cmd.Flags().StringP("priority", "p", string(models.PriorityMedium), "Priority (low, medium, high)")
	cmd.Flags().StringP("status", "s", string(models.StatusPending), "Status (pending, in_progress, completed, expired)")
	cmd.Flags().String("deadline", "24h", "Deadline (RFC3339, \"2006-01-02 15:04\", date or duration from now)")
	cmd.Flags().String("assignee-id", "", "Assignee id (default: signed-in user)")
	cmd.Flags().String("assignee-name", "", "Assignee name")

	return cmd
}

func taskListCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			statusFlag, _ := flags.GetString("status")
			priorityFlag, _ := flags.GetString("priority")
			assignee, _ := flags.GetString("assignee")
			mine, _ := flags.GetBool("mine")

			filter := tasks.Filter{AssigneeID: assignee}
			if statusFlag != "" {
				status, ok := models.ParseStatus(statusFlag)
				if !ok {
					return fmt.Errorf("invalid status %q", statusFlag)
				}
				filter.Status = status
			}
			if priorityFlag != "" {
				priority, ok := models.ParsePriority(priorityFlag)
				if !ok {
					return fmt.Errorf("invalid priority %q", priorityFlag)
				}
				filter.Priority = priority
			}

			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				if mine {
					id, ok := app.Sessions.CurrentUserID()
					if !ok {
						return fmt.Errorf("--mine requires a signed-in user")
					}
					filter.AssigneeID = id
				}

				result := app.Tasks.Query(filter)
				out := cmd.OutOrStdout()
				if len(result) == 0 {
					fmt.Fprintln(out, "No tasks")
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tSTATUS\tDEADLINE\tASSIGNEE")
				for _, t := range result {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						t.ID, t.Title, t.Priority, t.Status, t.Deadline.Format(deadlineLayout), t.AssignedTo.Name)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringP("status", "s", "", "Filter by status")
	cmd.Flags().StringP("priority", "p", "", "Filter by priority")
	cmd.Flags().StringP("assignee", "a", "", "Filter by assignee id")
	cmd.Flags().BoolP("mine", "m", false, "Only tasks assigned to the signed-in user")

	return cmd
}

func taskUpdateCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			flags := cmd.Flags()

			var patch models.TaskPatch
			if flags.Changed("title") {
				title, _ := flags.GetString("title")
				title = strings.TrimSpace(title)
				if title == "" {
					return fmt.Errorf("title cannot be empty")
				}
				patch.Title = &title
			}
			if flags.Changed("description") {
				description, _ := flags.GetString("description")
				patch.Description = &description
			}
			if flags.Changed("priority") {
				value, _ := flags.GetString("priority")
				priority, ok := models.ParsePriority(value)
				if !ok {
					return fmt.Errorf("invalid priority %q", value)
				}
				patch.Priority = &priority
			}
			if flags.Changed("status") {
				value, _ := flags.GetString("status")
				status, ok := models.ParseStatus(value)
				if !ok {
					return fmt.Errorf("invalid status %q", value)
				}
				patch.Status = &status
			}

			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				if flags.Changed("deadline") {
					value, _ := flags.GetString("deadline")
					deadline, err := parseDeadline(value, app.Tasks.Now())
					if err != nil {
						return err
					}
					patch.Deadline = &deadline
				}
				if flags.Changed("assignee-id") {
					assigneeID, _ := flags.GetString("assignee-id")
					assigneeName, _ := flags.GetString("assignee-name")
					patch.AssignedTo = &models.Assignee{ID: assigneeID, Name: assigneeName}
				}
				if patch.Empty() {
					return fmt.Errorf("nothing to update")
				}

				if _, ok := app.Tasks.Get(id); !ok {
					return fmt.Errorf("task %s not found", id)
				}
				if !app.Tasks.Update(ctx, id, patch) {
					return fmt.Errorf("failed to update task %s", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().StringP("priority", "p", "", "New priority")
	cmd.Flags().StringP("status", "s", "", "New status")
	cmd.Flags().String("deadline", "", "New deadline")
	cmd.Flags().String("assignee-id", "", "New assignee id")
	cmd.Flags().String("assignee-name", "", "New assignee name")

	return cmd
}

func taskDeleteCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				if _, ok := app.Tasks.Get(id); !ok {
					return fmt.Errorf("task %s not found", id)
				}
				if !app.Tasks.Delete(ctx, id) {
					return fmt.Errorf("failed to delete task %s", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
				return nil
			})
		},
	}
}

func taskStatsCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				stats := app.Tasks.Stats()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "  %-12s %d\n", "Total:", stats.Total)
				fmt.Fprintf(out, "  %-12s %d\n", "Completed:", stats.Completed)
				fmt.Fprintf(out, "  %-12s %d\n", "In progress:", stats.InProgress)
				fmt.Fprintf(out, "  %-12s %d\n", "Pending:", stats.Pending)
				fmt.Fprintf(out, "  %-12s %d\n", "Expired:", stats.Expired)
				return nil
			})
		},
	}
}

func taskExpireCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Mark open tasks past their deadline as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, getConfig, func(ctx context.Context, app *application) error {
				n, ok := app.Tasks.ExpireOverdue(ctx, app.Tasks.Now())
				if !ok {
					return fmt.Errorf("failed to expire tasks")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Expired %d task(s)\n", n)
				return nil
			})
		},
	}
}
