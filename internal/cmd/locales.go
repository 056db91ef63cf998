package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jobsift/jobsift/internal/scraper"
)

type LocalesCmd struct{}

type localeInfo struct {
	Locale   string `json:"locale"`
	Host     string `json:"host"`
	Language string `json:"language"`
}

func (l *LocalesCmd) Run(ctx *Context) error {
	infos := make([]localeInfo, 0, len(scraper.Locales()))
	for _, id := range scraper.Locales() {
		profile, err := scraper.LocaleFor(id)
		if err != nil {
			return err
		}
		infos = append(infos, localeInfo{
			Locale:   profile.ID,
			Host:     profile.Host,
			Language: profile.Language,
		})
	}

	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if ctx.PlainText {
		for _, info := range infos {
			fmt.Fprintln(ctx.Out, strings.Join([]string{info.Locale, info.Host, info.Language}, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "locale\thost\tlanguage")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Locale, info.Host, info.Language)
	}
	return tw.Flush()
}
