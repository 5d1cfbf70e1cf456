// Command archive prints archived bug reports and interview requests.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/arunjadaun2002/FlyPrep/config"
	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/postgres"
)

const payloadWidth = 60

func main() {
	kind := flag.String("kind", domain.KindBugReport, "submission kind (bug_report|interview_request)")
	limit := flag.Int("limit", 20, "rows to show, newest first")
	id := flag.Int64("id", 0, "show a single submission")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("postgres.dsn (or DATABASE_URL) is not set, the archive is disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        1,
		ApplicationName: cfg.Logging.Service + "-archive",
	})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	repo := postgres.NewSubmissionRepo(pool)

	var subs []postgres.Submission
	if *id > 0 {
		s, err := repo.Get(ctx, *id)
		if err != nil {
			log.Fatalf("get submission %d: %v", *id, err)
		}
		subs = append(subs, *s)
	} else {
		subs, err = repo.ListRecent(ctx, *kind, *limit)
		if err != nil {
			log.Fatalf("list submissions: %v", err)
		}
	}

	renderSubmissions(os.Stdout, subs)
}

func renderSubmissions(w io.Writer, subs []postgres.Submission) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Kind", "Created", "Delivered", "Send error", "Payload"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, s := range subs {
		delivered := "no"
		if s.Delivered {
			delivered = "yes"
			if s.DeliveredAt != nil {
				delivered = s.DeliveredAt.Format(time.DateTime)
			}
		}
		table.Append([]string{
			strconv.FormatInt(s.ID, 10),
			s.Kind,
			s.CreatedAt.Format(time.DateTime),
			delivered,
			s.SendError,
			shorten(string(s.Payload), payloadWidth),
		})
	}
	table.Render()

	if len(subs) == 0 {
		fmt.Fprintln(w, "no submissions")
	}
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
