package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	variants "github.com/goliatone/go-cms-variants"
	variantscmd "github.com/goliatone/go-cms-variants/internal/commands/variants"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("variants example: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("variants-example", flag.ExitOnError)
	configPath := fs.String("config", "", "Optional TOML configuration file")
	dsn := fs.String("dsn", "", "SQLite DSN; switches storage to bun when set")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := variants.DefaultConfig()
	if *configPath != "" {
		loaded, err := variants.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *dsn != "" {
		cfg.Storage.Provider = variants.StorageBun
		cfg.Storage.Dialect = "sqlite"
		cfg.Storage.DSN = *dsn
	}
	cfg.Features.Logger = true
	cfg.Features.Activity = true
	cfg.Commands.Enabled = true

	module, err := variants.New(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	ctx := context.Background()
	service := module.Service()
	author := uuid.New()

	if _, err := service.RegisterDefinition(ctx, variants.RegisterDefinitionRequest{
		Keyword: "title",
		Sync:    variants.SyncContentset | variants.SyncVariants,
	}); err != nil {
		return fmt.Errorf("register title: %w", err)
	}

	site, err := service.CreateFolder(ctx, variants.CreateFolderRequest{Name: "site", CreatedBy: author})
	if err != nil {
		return err
	}
	archive, err := service.CreateFolder(ctx, variants.CreateFolderRequest{Name: "archive", CreatedBy: author})
	if err != nil {
		return err
	}
	en, err := service.CreatePage(ctx, variants.CreatePageRequest{FolderID: site.ID, Language: "en", Name: "about", CreatedBy: author})
	if err != nil {
		return err
	}
	de, err := service.TranslatePage(ctx, variants.TranslatePageRequest{PageID: en.ID, Language: "de", CreatedBy: author})
	if err != nil {
		return err
	}
	copyPage, err := service.CreatePageVariant(ctx, variants.CreatePageVariantRequest{PageID: en.ID, FolderID: archive.ID, CreatedBy: author})
	if err != nil {
		return err
	}

	if err := service.WriteSyncedAttribute(ctx, variants.WriteAttributeRequest{
		PageID:    en.ID,
		Attribute: "title",
		Value:     variants.MustPayload("About us"),
		UpdatedBy: author,
	}); err != nil {
		return err
	}

	sub := dispatcher.SubscribeCommand(module.Commands().DeleteLanguageVariant)
	defer sub.Unsubscribe()
	if err := dispatcher.Dispatch(ctx, variantscmd.DeleteLanguageVariantCommand{PageID: de.ID, DeletedBy: author}); err != nil {
		return fmt.Errorf("dispatch delete: %w", err)
	}

	if err := service.WriteSyncedAttribute(ctx, variants.WriteAttributeRequest{
		PageID:    copyPage.ID,
		Attribute: "title",
		Value:     variants.MustPayload("About"),
		UpdatedBy: author,
	}); err != nil {
		return err
	}
	if _, err := service.RestorePage(ctx, variants.RestorePageRequest{PageID: de.ID, RestoredBy: author}); err != nil {
		return err
	}

	report, err := service.CheckAttributeSyncReport(ctx, en.ID, "title")
	if err != nil {
		return err
	}
	if err := printJSON("sync report after restore", report); err != nil {
		return err
	}

	if err := service.ReconcileSyncedAttribute(ctx, variants.ReconcileAttributeRequest{PageID: en.ID, Attribute: "title", UpdatedBy: author}); err != nil {
		return err
	}
	divergent, err := service.CheckAttributeSync(ctx, en.ID, "title")
	if err != nil {
		return err
	}
	fmt.Printf("divergent owners after reconcile: %d\n", len(divergent))

	deletion, err := service.DeleteFolder(ctx, variants.DeleteFolderRequest{FolderID: site.ID, DeletedBy: author})
	if err != nil {
		return err
	}
	return printJSON("folder delete", deletion)
}

func printJSON(label string, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s:\n%s\n", label, payload)
	return nil
}
