package chart

import (
	"errors"
	"fmt"
	"image/color"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"owcs-analyzer/internal/matches"
	"owcs-analyzer/internal/report"
	"owcs-analyzer/internal/stats"
)

// Chart titles
const (
	TitlePhaseWinRates = "Team Win-Rate by Phase (map winrate)"
	TitleMapWinRates   = "Team Map Win-Rates"
	TitleBans          = "Top %d Most Banned Heroes"
	TitleHeroWinRates  = "Hero Win Rate (more than %d maps)"
	TitleSwitches      = "Most Frequent Hero Switches"
)

var (
	colorBans     = color.RGBA{R: 203, G: 24, B: 29, A: 255}
	colorHeroes   = color.RGBA{R: 35, G: 139, B: 69, A: 255}
	colorPlayers  = color.RGBA{R: 68, G: 1, B: 84, A: 255}
	colorSwitches = color.RGBA{R: 40, G: 82, B: 122, A: 255}
)

// PlayersTitle names the top performers chart for a metric
func PlayersTitle(metric matches.Metric, limit int) string {
	return fmt.Sprintf("(Games with scoreboard provided) Top %d Players by Average %s",
		limit, cases.Title(language.English).String(string(metric)))
}

// RenderAll draws every view of a report and returns the written files.
// Views without data are skipped.
func (r *Renderer) RenderAll(rep *report.Report, opts report.Options) ([]string, error) {
	type job struct {
		title  string
		render func() (string, error)
	}

	bansTitle := fmt.Sprintf(TitleBans, opts.BanLimit)
	heroesTitle := fmt.Sprintf(TitleHeroWinRates, opts.MinHeroMaps)

	jobs := []job{
		{TitlePhaseWinRates, func() (string, error) { return r.phaseWinRates(rep.TeamPhaseWinRates) }},
		{TitleMapWinRates, func() (string, error) { return r.Heatmap(TitleMapWinRates, rep.TeamMapWinRates, sizeHeatmap) }},
		{bansTitle, func() (string, error) {
			return r.BarChart(bansTitle, "Ban Count", countBars(rep.BanFrequency), colorBans, sizeWide)
		}},
		{heroesTitle, func() (string, error) {
			return r.BarChart(heroesTitle, "Win Rate", heroBars(rep.HeroWinRates), colorHeroes, sizeWide)
		}},
	}
	for _, metric := range matches.Metrics {
		title := PlayersTitle(metric, opts.PlayerLimit)
		players := rep.TopPlayers[metric]
		jobs = append(jobs, job{title, func() (string, error) {
			return r.BarChart(title, string(metric), playerBars(players), colorPlayers, sizeSmall)
		}})
	}
	jobs = append(jobs, job{TitleSwitches, func() (string, error) {
		return r.BarChart(TitleSwitches, "Switch Count", countBars(rep.HeroSwitches), colorSwitches, sizeSmall)
	}})

	var written []string
	for _, j := range jobs {
		path, err := j.render()
		if errors.Is(err, ErrNoData) {
			r.log.Infof("Skipping %q: no data", j.title)
			continue
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	r.log.Infof("Rendered %d charts to %s", len(written), r.dir)
	return written, nil
}

// phaseWinRates groups bars by team with one series per phase. Teams that
// never played a phase get a zero-height bar.
func (r *Renderer) phaseWinRates(rates []stats.PhaseWinRate) (string, error) {
	var teams []string
	teamIdx := make(map[string]int)
	for _, rate := range rates {
		if _, ok := teamIdx[rate.Team]; !ok {
			teamIdx[rate.Team] = len(teams)
			teams = append(teams, rate.Team)
		}
	}

	phases := stats.Phases(rates)
	series := make([]Series, len(phases))
	phaseIdx := make(map[string]int, len(phases))
	for i, phase := range phases {
		phaseIdx[phase] = i
		series[i] = Series{Name: phase, Values: make([]float64, len(teams))}
	}
	for _, rate := range rates {
		series[phaseIdx[rate.Phase]].Values[teamIdx[rate.Team]] = rate.WinRate
	}

	return r.GroupedBarChart(TitlePhaseWinRates, "Win Rate", teams, series, sizeDefault)
}

func countBars(counts []stats.Count) []Bar {
	bars := make([]Bar, len(counts))
	for i, c := range counts {
		bars[i] = Bar{Label: c.Name, Value: float64(c.Count)}
	}
	return bars
}

func heroBars(rates []stats.HeroWinRate) []Bar {
	bars := make([]Bar, len(rates))
	for i, h := range rates {
		bars[i] = Bar{Label: h.Hero, Value: h.WinRate}
	}
	return bars
}

func playerBars(players []stats.PlayerMean) []Bar {
	bars := make([]Bar, len(players))
	for i, p := range players {
		bars[i] = Bar{Label: p.Player, Value: p.Mean}
	}
	return bars
}
