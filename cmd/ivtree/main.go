package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/henderiw/intervaltree/pkg/config"
	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/intervaltable"
	"github.com/henderiw/intervaltree/pkg/intervaltree"
	"github.com/henderiw/intervaltree/pkg/iprange"
	"github.com/urfave/cli"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
	"k8s.io/klog/v2"
)

var (
	configFile = cli.StringFlag{
		Name:  "config, c",
		Usage: "The `FILE` holding the interval collections",
		Value: "ivtree.yaml",
	}
	verbosity = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Log verbosity, 1 logs every mutation",
	}
	selectorFlag = cli.StringSliceFlag{
		Name:  "selector, l",
		Usage: "Only show collections with the label `KEY=VALUE`",
	}
	addFlag = cli.StringSliceFlag{
		Name:  "add",
		Usage: "Add an address range, CIDR prefix or address",
	}
	removeFlag = cli.StringSliceFlag{
		Name:  "remove",
		Usage: "Remove an address range, CIDR prefix or address",
	}
)

func main() {
	defer klog.Flush()
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		klog.ErrorS(err, "ivtree failed")
		klog.Flush()
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.App {
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)

	app := cli.NewApp()
	app.Name = "ivtree"
	app.Usage = "Maintain non-overlapping interval collections"
	app.Writer = w
	app.Flags = []cli.Flag{configFile, verbosity}
	app.Before = func(c *cli.Context) error {
		return klogFlags.Set("v", strconv.Itoa(c.GlobalInt("verbosity")))
	}
	app.Commands = []cli.Command{
		{
			Name:   "show",
			Usage:  "Show the collections after applying the configured operations",
			Flags:  []cli.Flag{selectorFlag},
			Action: show,
		},
		{
			Name:      "union",
			Usage:     "Show the union of two collections",
			ArgsUsage: "A B",
			Action:    combine(intervaltable.Table[int64].Union),
		},
		{
			Name:      "intersect",
			Usage:     "Show the intersection of two collections",
			ArgsUsage: "A B",
			Action:    combine(intervaltable.Table[int64].Intersection),
		},
		{
			Name:      "diff",
			Usage:     "Show collection A with collection B excluded",
			ArgsUsage: "A B",
			Action:    combine(intervaltable.Table[int64].Difference),
		},
		{
			Name:      "contains",
			Usage:     "Report whether a collection covers a range",
			ArgsUsage: "NAME RANGE",
			Action:    contains,
		},
		{
			Name:   "ip",
			Usage:  "Fold address ranges into a set and show it with its prefixes",
			Flags:  []cli.Flag{addFlag, removeFlag},
			Action: ip,
		},
	}
	return app
}

func loadTable(c *cli.Context) (intervaltable.Table[int64], error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	return cfg.NewTable(intervaltable.WithLogger(klog.NewKlogr()))
}

func show(c *cli.Context) error {
	t, err := loadTable(c)
	if err != nil {
		return err
	}
	selector, err := GetLabelSelector(c.StringSlice("selector"))
	if err != nil {
		return err
	}
	trees := t.GetByLabel(selector)
	for _, name := range t.Names() {
		if tree, ok := trees[name]; ok {
			fmt.Fprintf(c.App.Writer, "%s: %s\n", name, tree)
		}
	}
	return nil
}

func combine(fn func(t intervaltable.Table[int64], a, b string) (*intervaltree.IntervalTree[int64], error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("%s expects 2 collection names, got %d", c.Command.Name, c.NArg())
		}
		t, err := loadTable(c)
		if err != nil {
			return err
		}
		tree, err := fn(t, c.Args().Get(0), c.Args().Get(1))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, tree)
		return nil
	}
}

func contains(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("contains expects a collection name and a range, got %d arguments", c.NArg())
	}
	iv, err := interval.ParseRange(c.Args().Get(1))
	if err != nil {
		return err
	}
	t, err := loadTable(c)
	if err != nil {
		return err
	}
	ok, err := t.Contains(c.Args().Get(0), iv)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, ok)
	return nil
}

func ip(c *cli.Context) error {
	set := iprange.New()
	for _, s := range c.StringSlice("add") {
		if err := set.AddRange(s); err != nil {
			return err
		}
	}
	for _, s := range c.StringSlice("remove") {
		if err := set.RemoveRange(s); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, set)
	for _, p := range set.Prefixes() {
		fmt.Fprintln(c.App.Writer, " ", p)
	}
	return nil
}

// GetLabelSelector turns KEY=VALUE pairs into an equality selector; no pairs
// select everything.
func GetLabelSelector(pairs []string) (labels.Selector, error) {
	fullselector := labels.NewSelector()
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("selector %q is not of the form KEY=VALUE", pair)
		}
		req, err := labels.NewRequirement(k, selection.Equals, []string{v})
		if err != nil {
			return nil, err
		}
		fullselector = fullselector.Add(*req)
	}
	return fullselector, nil
}
