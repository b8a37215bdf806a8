package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dixithak/FileInsights/internal/conf"
	"github.com/dixithak/FileInsights/internal/data"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/pkg/redis"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/dixithak/FileInsights/internal/tracker/queue"
	"github.com/dixithak/FileInsights/internal/tracker/sniff"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadEnv loads configuration and a logger that stays silent unless --verbose
// asks for debug console output
func loadEnv(cmd *cobra.Command) (*conf.Config, *logger.Logger, error) {
	config, err := conf.LoadConfig(getConfigPath(cmd))
	if err != nil {
		return nil, nil, err
	}

	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	if !verbose {
		return config, logger.NewFromZap(zap.NewNop()), nil
	}
	log, err := logger.Development()
	if err != nil {
		return nil, nil, err
	}
	return config, log, nil
}

// eventType maps the short forms accepted by --type to notification event types
func eventType(s string) (string, error) {
	switch strings.ToLower(s) {
	case "created", "create":
		return biz.EventObjectCreated, nil
	case "deleted", "delete":
		return biz.EventObjectDeleted, nil
	default:
		return "", fmt.Errorf("unsupported event type %q: use 'created' or 'deleted'", s)
	}
}

func newRouteCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "route <bucket> <key>",
		Short: "Process one object notification synchronously",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := eventType(kind)
			if err != nil {
				return err
			}
			config, log, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			d, cleanup, err := data.NewData(config, log)
			if err != nil {
				return err
			}
			defer cleanup()

			router := biz.NewRouter(
				biz.NewCreationProcessor(d.ObjectStore, sniff.New(log), d.Tables, log),
				biz.NewDeletionProcessor(d.Tables, log),
				config.Tracker.BatchConcurrency,
				log,
			)

			result := router.Route(cmd.Context(), biz.Notification{Bucket: args[0], Key: args[1], EventType: et})
			if getOutputFormat(cmd) == "json" {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", result.Filepath, result.Status, result.Outcome)
			}
			return result.Err
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "created", "event type: created or deleted")
	return cmd
}

func newEnqueueCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "enqueue <bucket> <key>",
		Short: "Push an object notification onto the tracker event queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := eventType(kind)
			if err != nil {
				return err
			}
			config, log, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			rdb, err := redis.New(&config.Redis, log)
			if err != nil {
				return err
			}
			defer rdb.Close()

			id, err := queue.Enqueue(cmd.Context(), rdb, biz.Notification{Bucket: args[0], Key: args[1], EventType: et})
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"task_id": id})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "created", "event type: created or deleted")
	return cmd
}

// newTableCmd builds the latest, history and deleted lookups
func newTableCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <filepath>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, log, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			d, cleanup, err := data.NewData(config, log)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := lookup(cmd.Context(), d.Tables, name, args[0])
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		},
	}
}

func lookup(ctx context.Context, tables *biz.Tables, name, filepath string) ([]*biz.FileMetadataRecord, error) {
	switch name {
	case "latest":
		rec, err := tables.Latest.Get(ctx, filepath)
		if err != nil {
			return nil, err
		}
		return []*biz.FileMetadataRecord{rec}, nil
	case "history":
		return tables.History.Versions(ctx, filepath)
	case "deleted":
		return tables.Deleted.Versions(ctx, filepath)
	default:
		return nil, fmt.Errorf("unknown table %q", name)
	}
}

func printRecords(cmd *cobra.Command, records []*biz.FileMetadataRecord) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), records)
	}
	w := cmd.OutOrStdout()
	for _, rec := range records {
		ts := rec.Timestamp
		if rec.DeletionTimestamp != "" {
			ts = rec.DeletionTimestamp
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", ts, rec.Filepath, rec.Size, strings.Join(rec.Header, ","))
	}
	return nil
}
