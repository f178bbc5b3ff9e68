package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"laura-backend/internal/config"
	"laura-backend/internal/leads"
	"laura-backend/internal/pricing"
	"laura-backend/internal/wizard"

	"github.com/spf13/cobra"
)

type opener func(ctx context.Context) (*env, error)

type demoLead struct {
	service   pricing.Service
	frequency pricing.Frequency
	hours     float64
	options   []string
	name      string
	phone     string
	city      string
	comments  string
	rental    *wizard.RentalDetails
	pro       *wizard.ProDetails
}

var demoLeads = []demoLead{
	{service: pricing.ServiceRegular, frequency: pricing.FrequencyWeekly, hours: 2.5, options: []string{"ironing"}, name: "Mme Martin", phone: "06 12 34 56 78", city: "Lyon", comments: "Digicode 12B, 3e étage"},
	{service: pricing.ServiceSeniors, frequency: pricing.FrequencyBiweekly, hours: 2, options: []string{"groceryShopping"}, name: "M. Durand", phone: "07 11 22 33 44", city: "Paris"},
	{service: pricing.ServiceShortTermRental, frequency: pricing.FrequencyOnce, hours: 3, name: "Gîte des Tilleuls", phone: "06 98 76 54 32", city: "Bordeaux",
		rental: &wizard.RentalDetails{ResidenceType: pricing.ResidenceSecondary, KeyAccess: "keybox", KeyboxCode: "4821", CheckoutTime: "11:00", LinenOption: "full"}},
	{service: pricing.ServiceProfessional, frequency: pricing.FrequencyWeekly, hours: 4, options: []string{"suppliesProvided", "windows"}, name: "Cabinet Lefèvre", phone: "03 20 00 00 00", city: "Lille",
		pro: &wizard.ProDetails{LocalType: "medical", Surface: "M", PreferredSchedule: "after18", CompanyName: "Cabinet Lefèvre"}},
	{service: pricing.ServiceOneTime, frequency: pricing.FrequencyOnce, hours: 3, options: []string{"windows"}, name: "", phone: "+33 6 55 44 33 22", city: "Toulouse", comments: "Fin de chantier"},
}

// seed submits each demo lead through the wizard so the stored records look
// exactly like real submissions.
func seed(ctx context.Context, saver wizard.Saver, count int) ([]string, error) {
	var ids []string
	for i := 0; i < count; i++ {
		d := demoLeads[i%len(demoLeads)]
		st, err := wizard.New(d.service)
		if err != nil {
			return ids, err
		}
		steps := []func() error{
			func() error { return st.SetFrequency(d.frequency) },
			func() error { return st.SetHours(d.hours) },
		}
		for _, opt := range d.options {
			opt := opt
			steps = append(steps, func() error { return st.SetOption(opt, true) })
		}
		if d.rental != nil {
			steps = append(steps, func() error { return st.UpdateRental(*d.rental) })
		}
		if d.pro != nil {
			steps = append(steps, func() error { return st.UpdatePro(*d.pro) })
		}
		steps = append(steps, st.Next, st.Next, func() error {
			return st.UpdateContact(wizard.ContactUpdate{Name: &d.name, Phone: &d.phone, City: &d.city, Comments: &d.comments})
		})
		for _, step := range steps {
			if err := step(); err != nil {
				return ids, err
			}
		}
		id, err := st.Submit(ctx, saver)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedCmd(open opener) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ids, err := seed(cmd.Context(), e.store, count)
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", len(demoLeads), "number of leads to insert")
	return cmd
}

func printLeads(w io.Writer, items []leads.Lead, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUT\tNOM\tTÉLÉPHONE\tSERVICE\tPRIX")
	for _, l := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID,
			l.CreatedAt.In(loc).Format("02/01/2006 15:04"),
			l.Status.Label(),
			l.Name,
			l.Phone,
			l.ServiceLabel,
			strconv.FormatFloat(l.PriceEstimate, 'f', 2, 64),
		)
	}
	return tw.Flush()
}

func listCmd(open opener) *cobra.Command {
	var (
		status  string
		service string
		query   string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored leads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !leads.IsValidStatus(status) {
				return fmt.Errorf("unknown status %q", status)
			}
			if service != "" && !pricing.IsValidService(service) {
				return fmt.Errorf("unknown service %q", service)
			}
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			f := leads.Filter{Status: leads.Status(status), Service: pricing.Service(service), Query: query}
			items := f.Apply(e.store.GetAll(cmd.Context()))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			return printLeads(cmd.OutOrStdout(), items, e.cfg.Timezone)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (new, contacted, confirmed, cancelled)")
	cmd.Flags().StringVar(&service, "service", "", "filter by service id")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search name, phone, city or id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func exportCmd(open opener) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every lead to a dated CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			path := filepath.Join(dir, leads.ExportFilename(time.Now(), e.cfg.Timezone))
			if err := os.WriteFile(path, e.store.ExportAll(cmd.Context()), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	return cmd
}

func estimateCmd() *cobra.Command {
	var (
		service   string
		frequency string
		hours     float64
		residence string
		ratesFile string
		opts      pricing.Options
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Price a selection with the rates the API uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pricing.IsValidService(service) {
				return fmt.Errorf("unknown service %q", service)
			}
			if frequency != "" && !pricing.IsValidFrequency(frequency) {
				return fmt.Errorf("unknown frequency %q", frequency)
			}
			if ratesFile == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				ratesFile = cfg.PricingFile
			}
			rates, err := ratesFor(ratesFile)
			if err != nil {
				return err
			}
			est := pricing.Compute(pricing.Selection{
				Service:       pricing.Service(service),
				Frequency:     pricing.Frequency(frequency),
				Hours:         hours,
				Options:       opts,
				ResidenceType: residence,
			}, rates)
			return writeEstimate(cmd.OutOrStdout(), est)
		},
	}
	cmd.Flags().StringVar(&ratesFile, "rates", "", "rates YAML file (defaults to PRICING_FILE)")
	cmd.Flags().StringVarP(&service, "service", "s", string(pricing.ServiceRegular), "service id")
	cmd.Flags().StringVarP(&frequency, "frequency", "f", "", "frequency id")
	cmd.Flags().Float64VarP(&hours, "hours", "H", 0, "hours per visit")
	cmd.Flags().StringVar(&residence, "residence", "", "rental residence type (primary, secondary)")
	cmd.Flags().BoolVar(&opts.Ironing, "ironing", false, "add ironing")
	cmd.Flags().BoolVar(&opts.SuppliesProvided, "supplies", false, "cleaner brings supplies")
	cmd.Flags().BoolVar(&opts.Windows, "windows", false, "add window cleaning")
	cmd.Flags().BoolVar(&opts.GroceryShopping, "shopping", false, "add grocery shopping (billed separately)")
	return cmd
}

func writeEstimate(w io.Writer, est pricing.Estimate) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Sous-total\t%.2f €\n", est.Subtotal)
	fmt.Fprintf(tw, "Promotion\t-%.2f €\n", est.Promo)
	fmt.Fprintf(tw, "Après promotion\t%.2f €\n", est.AfterPromo)
	if est.IsEligible50 {
		fmt.Fprintf(tw, "Après crédit d'impôt\t%.2f €\n", est.FinalPrice)
	} else {
		fmt.Fprintf(tw, "Prix final\t%.2f €\n", est.FinalPrice)
	}
	return tw.Flush()
}
