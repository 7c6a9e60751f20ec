package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/edvise/core/catalog"
	"github.com/trezcool/edvise/core/content"
	"github.com/trezcool/edvise/core/pricing"
)

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Courses      []catalog.CourseData      `yaml:"courses"`
	Tiers        []pricing.TierData        `yaml:"tiers"`
	Promotions   []pricing.PromotionData   `yaml:"promotions"`
	FAQs         []content.FAQData         `yaml:"faqs"`
	Carousels    []content.CarouselData    `yaml:"carousels"`
	Testimonials []content.TestimonialData `yaml:"testimonials"`
}

type validatable interface {
	Validate(validate *validator.Validate) error
}

func (sf *seedFile) validate(validate *validator.Validate) error {
	check := func(section string, i int, v validatable) error {
		return errors.Wrapf(v.Validate(validate), "%s[%d]", section, i)
	}
	for i := range sf.Courses {
		if err := check("courses", i, &sf.Courses[i]); err != nil {
			return err
		}
	}
	for i := range sf.Tiers {
		if err := check("tiers", i, &sf.Tiers[i]); err != nil {
			return err
		}
	}
	for i := range sf.Promotions {
		if err := check("promotions", i, &sf.Promotions[i]); err != nil {
			return err
		}
	}
	for i := range sf.FAQs {
		if err := check("faqs", i, &sf.FAQs[i]); err != nil {
			return err
		}
	}
	for i := range sf.Carousels {
		if err := check("carousels", i, &sf.Carousels[i]); err != nil {
			return err
		}
	}
	for i := range sf.Testimonials {
		if err := check("testimonials", i, &sf.Testimonials[i]); err != nil {
			return err
		}
	}
	return nil
}

func (cli *commandLine) seedCmd() *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "seed FILE.yaml",
		Short: "Load courses, pricing and site content of a tenant from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var sf seedFile
			if err = yaml.Unmarshal(raw, &sf); err != nil {
				return errors.Wrap(err, "parsing seed file")
			}
			if err = sf.validate(cli.validate); err != nil {
				return err
			}

			n, err := cli.seed(cmd.Context(), slug, sf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records for tenant %s\n", n, slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "tenant", "", "Tenant slug")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

// seed inserts everything in a single transaction and returns the number of created records.
func (cli *commandLine) seed(ctx context.Context, slug string, sf seedFile) (n int, err error) {
	t, err := cli.tenantBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}

	tx, err := cli.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			n = 0
		}
	}()

	courses, prices, site := cli.courses(tx), cli.pricing(tx), cli.content(tx)
	for i, data := range sf.Courses {
		if _, err = courses.Create(ctx, t.ID, data); err != nil {
			return 0, errors.Wrapf(err, "courses[%d]", i)
		}
		n++
	}
	for i, data := range sf.Tiers {
		if _, err = prices.CreateTier(ctx, t.ID, data); err != nil {
			return 0, errors.Wrapf(err, "tiers[%d]", i)
		}
		n++
	}
	for i, data := range sf.Promotions {
		if _, err = prices.CreatePromotion(ctx, t.ID, data); err != nil {
			return 0, errors.Wrapf(err, "promotions[%d]", i)
		}
		n++
	}
	for i, data := range sf.FAQs {
		if _, err = site.CreateFAQ(ctx, t.ID, data); err != nil {
			return 0, errors.Wrapf(err, "faqs[%d]", i)
		}
		n++
	}
	for i, data := range sf.Carousels {
		if _, err = site.CreateCarousel(ctx, t.ID, data); err != nil {
			return 0, errors.Wrapf(err, "carousels[%d]", i)
		}
		n++
	}
	for i, data := range sf.Testimonials {
		if _, err = site.CreateTestimonial(ctx, t.ID, data); err != nil {
			return 0, errors.Wrapf(err, "testimonials[%d]", i)
		}
		n++
	}

	err = tx.Commit()
	return n, err
}
