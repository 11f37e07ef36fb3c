package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/assetwatch/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunWizard launches the terminal configuration wizard and writes the
// resulting tracker config to config.gen.yaml.
func RunWizard() error {
	var (
		exchanges   []string
		driver      string
		intervalStr string
		confirm     bool
	)

	intervalStr = "60s"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ASSETWATCH CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your balances tracked.\n"))

	fmt.Println(stepStyle.Render("STEP 1: EXCHANGES"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select exchanges to track").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("CoinEx", "coinex"),
				).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("pick at least one exchange")
					}
					return nil
				}).
				Value(&exchanges),
		),
	).Run()
	if err != nil {
		return err
	}

	exchangeConfigs := make([]config.ExchangeConfig, 0, len(exchanges))
	for _, name := range exchanges {
		var apiKey, apiSecret string

		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render("ASSETWATCH CONFIG WIZARD"))
		fmt.Println(stepStyle.Render(fmt.Sprintf("CREDENTIALS: %s", name)))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("API key").
					Description("Leave empty to read it from the environment at startup").
					Value(&apiKey),
				huh.NewInput().
					Title("API secret").
					EchoMode(huh.EchoModePassword).
					Value(&apiSecret),
			),
		).Run()
		if err != nil {
			return err
		}

		exchangeConfigs = append(exchangeConfigs, config.ExchangeConfig{
			Name:      name,
			APIKey:    apiKey,
			APISecret: apiSecret,
		})
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ASSETWATCH CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: DATABASE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should snapshots be stored?").
				Options(
					huh.NewOption("MySQL (networked, pooled)", config.DriverMySQL),
					huh.NewOption("SQLite (embedded file)", config.DriverSQLite),
				).
				Value(&driver),
		),
	).Run()
	if err != nil {
		return err
	}

	db := config.DatabaseConfig{Driver: driver}
	if driver == config.DriverMySQL {
		portStr := "3306"
		db.Host = "127.0.0.1"
		db.Name = "assetwatch"
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Host").Value(&db.Host),
				huh.NewInput().Title("Port").Validate(validatePort).Value(&portStr),
				huh.NewInput().Title("Database name").Value(&db.Name),
				huh.NewInput().Title("User").Value(&db.User),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&db.Password),
			),
		).Run()
		if err != nil {
			return err
		}
		db.Port, _ = strconv.Atoi(portStr)
	} else {
		db.Path = "assetwatch.db"
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Database file path").Value(&db.Path),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ASSETWATCH CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: SCHEDULE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll interval").
				Description("Both loops tick on this interval, e.g. 60s or 5m").
				Validate(validateInterval).
				Value(&intervalStr),
		),
	).Run()
	if err != nil {
		return err
	}
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ASSETWATCH CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf("Exchanges: %v\nDatabase: %s\nInterval: %s\n", exchanges, driver, intervalStr)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	cfg := config.FileConfig{
		Interval:  intervalStr,
		Exchanges: exchangeConfigs,
		Database:  db,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", filename)))
	return nil
}

func validatePort(s string) error {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("must be a valid port")
	}
	return nil
}

func validateInterval(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration like 60s")
	}
	if d < time.Second {
		return fmt.Errorf("must be at least 1s")
	}
	return nil
}
