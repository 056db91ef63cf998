package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/models"
	"github.com/jobsift/jobsift/internal/network"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Validate proxies against a target URL."`
}

type ProxyCheckCmd struct {
	Target  string `help:"Target URL." default:"https://www.google.com"`
	Timeout int    `help:"Timeout in seconds." default:"15"`
	Proxies string `help:"Comma-separated proxy URLs; defaults to the configured list." env:"JOBSIFT_PROXIES"`
}

type ProxyCheckResult struct {
	Proxy     string `json:"proxy"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Banned    bool   `json:"banned"`
	Error     string `json:"error,omitempty"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	results := make([]ProxyCheckResult, 0, len(proxies))
	for _, proxy := range proxies {
		result := ProxyCheckResult{Proxy: proxy}
		rotator, err := network.NewRotator([]string{proxy}, 5*time.Minute)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		client, err := network.NewClient(rotator, models.ClientConfig{
			Timeout: time.Duration(p.Timeout) * time.Second,
		})
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		req, err := fhttp.NewRequest(fhttp.MethodGet, p.Target, nil)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		start := time.Now()
		resp, err := doWithTimeout(client, req, time.Duration(p.Timeout)*time.Second)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			result.Banned = anyBanned(rotator)
			results = append(results, result)
			continue
		}
		_ = resp.Body.Close()

		result.LatencyMS = time.Since(start).Milliseconds()
		result.Status = fmt.Sprintf("%d", resp.StatusCode)
		result.Banned = anyBanned(rotator)
		results = append(results, result)
	}

	return writeProxyResults(ctx, results)
}

func anyBanned(rotator *network.Rotator) bool {
	for _, health := range rotator.Health() {
		if health.Banned {
			return true
		}
	}
	return false
}

func doWithTimeout(client *network.Client, req *fhttp.Request, timeout time.Duration) (*fhttp.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()
	return client.Do(req.WithContext(ctx))
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if ctx.PlainText {
		for _, res := range results {
			line := []string{res.Proxy, res.Status, fmt.Sprintf("%d", res.LatencyMS), boolWord(res.Banned), res.Error}
			fmt.Fprintln(ctx.Out, strings.Join(line, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\tstatus\tlatency_ms\tbanned\terror")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", res.Proxy, res.Status, res.LatencyMS, boolWord(res.Banned), res.Error)
	}
	return tw.Flush()
}

func boolWord(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
