// Command anki-import ingests a legacy .apkg package for one user.
// It is the operational path for bulk imports; the archive ends up as
// decks, note types, notes, cards and fresh review states.
//
// Flags:
//
//	--user  importing user's id (required)
//	--file  path to the .apkg archive (required)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/app"
	"github.com/tsuyanki/tsuyanki-backend/internal/service/ankiimport"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

func main() {
	userFlag := flag.String("user", "", "importing user's id")
	fileFlag := flag.String("file", "", "path to the .apkg archive")
	flag.Parse()

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		log.Fatalf("--user must be a valid id: %v", err)
	}
	if *fileFlag == "" {
		log.Fatal("--file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("initialize application: %v", err)
	}
	defer a.Close()

	ctx = ctxutil.WithUserID(ctx, userID)

	result, err := a.Import.Import(ctx, ankiimport.ImportInput{ArchivePath: *fileFlag})
	if err != nil {
		a.Log.Error("import failed",
			slog.String("user_id", userID.String()),
			slog.String("file", *fileFlag),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	a.Log.Info("import finished",
		slog.String("user_id", userID.String()),
		slog.Int("decks_imported", result.DecksImported),
		slog.Int("notes_imported", result.NotesImported),
	)
}
