// Command sweep reconciles the blob store against the database: it
// lists every stored object, diffs against the image rows, prints the
// orphans and deletes them after confirmation. Run it periodically to
// clean up after reclamation failures.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"moodr-backend/internal/blob"
	"moodr-backend/internal/config"
	"moodr-backend/internal/reclaim"
	"moodr-backend/internal/store"
)

func main() {
	yes := flag.Bool("yes", false, "delete without asking")
	dryRun := flag.Bool("dry-run", false, "list orphans and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	objects, err := blob.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object store")
	}

	known, err := db.AllImageURLs()
	if err != nil {
		log.WithError(err).Fatal("failed to list image rows")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	orphans, err := reclaim.Orphans(ctx, objects, known)
	if err != nil {
		log.WithError(err).Fatal("failed to list stored objects")
	}

	if len(orphans) == 0 {
		fmt.Println("no orphaned objects")
		return
	}

	fmt.Printf("%d orphaned object(s):\n", len(orphans))
	for _, u := range orphans {
		fmt.Println("  " + u)
	}

	if *dryRun {
		return
	}

	if !*yes && !confirm() {
		fmt.Println("aborted")
		return
	}

	reclaim.NewWorker(objects, cfg.BlobTimeout).Reclaim(orphans)
	fmt.Printf("deleted %d object(s)\n", len(orphans))
}

func confirm() bool {
	fmt.Print("delete these objects? [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
