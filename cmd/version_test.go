package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/covid-trends/internal/config"
)

func TestWriteVersionShowsReportSources(t *testing.T) {
	cfg := config.Default()
	cfg.ConfigDir = "/etc/covid-trends"
	cfg.DataDir = "/srv/reports"

	var out bytes.Buffer
	writeVersion(&out, "prod.yaml", cfg)

	text := out.String()
	assert.Contains(t, text, "Version:    "+Version)
	assert.Contains(t, text, "Config:       prod.yaml")
	assert.Contains(t, text, "Trust deaths: "+config.DefaultTrustDeathsPage+" ("+filepath.Join("/etc/covid-trends", "trust_deaths.csv")+")")
	assert.Contains(t, text, "Pillar 1:     "+filepath.Join("/etc/covid-trends", "pillar1_configuration.csv"))
	assert.Contains(t, text, "Pillar 2:     "+filepath.Join("/etc/covid-trends", "pillar2_configuration.csv"))
	assert.Contains(t, text, "Reports to:   /srv/reports")
}
