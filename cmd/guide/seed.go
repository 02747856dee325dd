package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Unblonde/gentle-separation-guide/internal/chat"
	"github.com/Unblonde/gentle-separation-guide/internal/config"
	"github.com/Unblonde/gentle-separation-guide/internal/family"
	"github.com/Unblonde/gentle-separation-guide/internal/finance"
	"github.com/Unblonde/gentle-separation-guide/internal/holiday"
	"github.com/Unblonde/gentle-separation-guide/internal/invite"
	"github.com/Unblonde/gentle-separation-guide/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo family with two parents and sample arrangements",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := user.NewStore(pool)
	families := family.NewStore(pool)
	invites := invite.NewStore(pool)
	finances := finance.NewStore(pool)
	holidays := holiday.NewStore(pool)
	messages := chat.NewStore(pool)

	alex, err := users.Create(ctx, user.CreateUserInput{
		Email:    "alex@example.com",
		Password: "demo-password",
		FullName: "Alex Morgan",
	})
	if err != nil {
		return fmt.Errorf("seeding first parent: %w", err)
	}

	sam, err := users.Create(ctx, user.CreateUserInput{
		Email:    "sam@example.com",
		Password: "demo-password",
		FullName: "Sam Morgan",
	})
	if err != nil {
		return fmt.Errorf("seeding second parent: %w", err)
	}

	fam, err := families.Create(ctx, alex.ID, "Parent A")
	if err != nil {
		return fmt.Errorf("seeding family: %w", err)
	}

	inv, err := invites.Create(ctx, invite.CreateInvitationInput{
		FamilyID:  fam.FamilyID,
		InvitedBy: alex.ID,
		Email:     sam.Email,
	})
	if err != nil {
		return fmt.Errorf("seeding invitation: %w", err)
	}
	if _, err := invites.Accept(ctx, inv.Token, sam.ID, "Parent B"); err != nil {
		return fmt.Errorf("accepting seeded invitation: %w", err)
	}

	financialTopics := []finance.CreateArrangementInput{
		{
			Category:    "Child maintenance",
			Description: "Monthly contribution towards everyday costs.",
			ParentA:     "£350 per month feels right based on the CMS calculator.",
			ParentB:     "Agreed, £350 per month starting next month.",
			Status:      finance.StatusAgreed,
		},
		{
			Category:    "School costs",
			Description: "Uniform, trips, and after-school clubs.",
			ParentA:     "Split 50/50 with receipts shared in advance.",
			ParentB:     "I'd prefer to split in proportion to income.",
			Status:      finance.StatusDisagreed,
		},
		{
			Category:    "Childcare",
			Description: "Wraparound care on work days.",
			ParentA:     "",
			ParentB:     "",
			Status:      finance.StatusUnreviewed,
		},
	}
	for _, topic := range financialTopics {
		topic.FamilyID = fam.FamilyID
		topic.CreatedBy = alex.ID
		if _, err := finances.Create(ctx, topic); err != nil {
			return fmt.Errorf("seeding financial arrangement: %w", err)
		}
	}

	nextMonth := time.Now().AddDate(0, 1, 0)
	holidayEntries := []holiday.CreateArrangementInput{
		{
			Name:            "February half term",
			StartDate:       nextMonth,
			EndDate:         nextMonth.AddDate(0, 0, 7),
			Location:        "Grandparents in York",
			WithParent:      "Parent A",
			PickupTime:      "09:00",
			PickupLocation:  "School gate",
			DropoffTime:     "17:00",
			DropoffLocation: "Home",
		},
		{
			Name:       "Easter week",
			StartDate:  nextMonth.AddDate(0, 2, 0),
			EndDate:    nextMonth.AddDate(0, 2, 7),
			Location:   "Home",
			WithParent: "Parent B",
		},
	}
	for _, entry := range holidayEntries {
		entry.FamilyID = fam.FamilyID
		entry.CreatedBy = alex.ID
		if _, err := holidays.Create(ctx, entry); err != nil {
			return fmt.Errorf("seeding holiday arrangement: %w", err)
		}
	}

	if _, err := messages.Create(ctx, chat.CreateMessageInput{
		FamilyID:    fam.FamilyID,
		IsAssistant: true,
		Content:     chat.Greeting,
	}); err != nil {
		return fmt.Errorf("seeding greeting: %w", err)
	}

	slog.Info("seeded demo family",
		"family_id", fam.FamilyID,
		"parent_a", alex.Email,
		"parent_b", sam.Email,
		"password", "demo-password",
	)
	return nil
}
