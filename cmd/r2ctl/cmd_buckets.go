package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:     "buckets",
	Aliases: []string{"lb"},
	Short:   "List buckets with size, object count and estimated cost",
	RunE:    runBuckets,
}

var mbCmd = &cobra.Command{
	Use:   "mb <bucket>",
	Short: "Create a bucket",
	Args:  cobra.ExactArgs(1),
	RunE:  runMakeBucket,
}

var rbCmd = &cobra.Command{
	Use:   "rb <bucket>",
	Short: "Delete an empty bucket",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoveBucket,
}

func init() {
	mbCmd.Flags().Bool("public", false, "Enable the r2.dev public URL")
}

func runBuckets(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	items, err := api.Buckets(cmd.Context())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No buckets.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOBJECTS\tSIZE\tCOST/MONTH\tPUBLIC\tCREATED")
	for _, b := range items {
		objects := fmt.Sprintf("%d", b.ObjectCount)
		if b.StatsPartial {
			objects += "+"
		}
		public := "-"
		if b.PublicAccess {
			public = b.PublicURL
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%s\t%s\n",
			b.Name, objects, b.SizeHuman, b.EstimatedMonthlyCost, public, b.CreationDate.Format("2006-01-02"))
	}
	return w.Flush()
}

func runMakeBucket(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	public, _ := cmd.Flags().GetBool("public")
	b, err := api.CreateBucket(cmd.Context(), args[0], public)
	if err != nil {
		return err
	}
	color.Green("Created bucket %s\n", b.Name)
	if b.PublicURL != "" {
		fmt.Printf("Public URL: %s\n", b.PublicURL)
	}
	return nil
}

func runRemoveBucket(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	if err := api.DeleteBucket(cmd.Context(), args[0]); err != nil {
		return err
	}
	color.Green("Deleted bucket %s\n", args[0])
	return nil
}
