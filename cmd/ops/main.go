// Operator tool: prints a quick console summary of the reports table so
// on-call staff can eyeball the backlog without opening psql.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/olekukonko/tablewriter"
)

func main() {
	db, err := sql.Open("pgx", os.Getenv("DATABASE_URL"))
	if err != nil {
		panic(fmt.Errorf("unable to open db conn: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbx := sqlx.NewDb(db, "postgres")

	if err := printBacklog(ctx, dbx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := printRecent(ctx, dbx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type backlogRow struct {
	Type   string `db:"type"`
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func printBacklog(ctx context.Context, db *sqlx.DB) error {
	var rows []backlogRow

	err := db.SelectContext(ctx, &rows, `
		SELECT type, status, COUNT(*) AS count
		FROM reports
		GROUP BY type, status
		ORDER BY type, status`)
	if err != nil {
		return fmt.Errorf("querying backlog: %w", err)
	}

	fmt.Println("Reports by type and status")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "Status", "Count"})
	for _, r := range rows {
		table.Append([]string{r.Type, r.Status, fmt.Sprint(r.Count)})
	}
	table.Render()

	return nil
}

type recentRow struct {
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func printRecent(ctx context.Context, db *sqlx.DB) error {
	var rows []recentRow

	err := db.SelectContext(ctx, &rows, `
		SELECT id, type, title, status, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT 10`)
	if err != nil {
		return fmt.Errorf("querying recent reports: %w", err)
	}

	fmt.Println("Most recent reports")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Type", "Title", "Status", "Created"})
	table.SetRowLine(true)
	table.SetRowSeparator("-")
	for _, r := range rows {
		table.Append([]string{r.ID, r.Type, r.Title, r.Status, r.CreatedAt.Format("2006-01-02 15:04")})
	}
	table.Render()

	return nil
}
