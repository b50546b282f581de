package config_test

import (
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	config "github.com/bankverify/callsheet/internal/configuration"
)

func TestConfiguration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Configuration Loader Suite")
}

var _ = Describe("Config Loader", func() {
	BeforeEach(func() {
		// Ensure a clean environment so that env overrides take effect.
		os.Clearenv()
	})

	AfterEach(func() {
		os.Unsetenv("APP_SHEET__BASE_URL")
		os.Unsetenv("APP_LOG__LEVEL")
	})

	It("should load default configuration when no file is provided", func() {
		cfg, err := config.Load("")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.AppName).To(Equal("callsheet"))
		Expect(cfg.Log.Level).To(Equal("info"))
		Expect(cfg.Server.Address).To(Equal(":8080"))
		Expect(cfg.Session.SettlingDelay).To(Equal(1 * time.Second))
	})

	It("should override config values with environment variables", func() {
		os.Setenv("APP_SHEET__BASE_URL", "https://override.example.com/banks")
		os.Setenv("APP_LOG__LEVEL", "debug")
		cfg, err := config.Load("")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheet.BaseURL).To(Equal("https://override.example.com/banks"))
		Expect(cfg.Log.Level).To(Equal("debug"))
	})

	It("should load configuration from a valid config file", func() {
		content := `
app_name = "test-app"

[log]
level = "warn"
format = "json"

[server]
address = ":9090"

[sheet]
base_url = "https://sheet.test.example.com/api/banks"
timeout = "10s"

[session]
settling_delay = "250ms"

[identity]
file = "/tmp/test-identity.json"

[letters]
output_dir = "/tmp/test-letters"
sender_name = "Test Desk"
sender_organization = "Test Cell"
sender_address_lines = ["Line One", "Line Two"]
`
		tmpFile, err := os.CreateTemp("", "config-*.toml")
		Expect(err).NotTo(HaveOccurred())
		defer os.Remove(tmpFile.Name())
		_, err = tmpFile.Write([]byte(content))
		Expect(err).NotTo(HaveOccurred())
		tmpFile.Close()

		cfg, err := config.Load(tmpFile.Name())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.AppName).To(Equal("test-app"))
		Expect(cfg.Log.Level).To(Equal("warn"))
		Expect(cfg.Log.Format).To(Equal("json"))
		Expect(cfg.Server.Address).To(Equal(":9090"))
		Expect(cfg.Sheet.BaseURL).To(Equal("https://sheet.test.example.com/api/banks"))
		Expect(cfg.Sheet.Timeout).To(Equal(10 * time.Second))
		Expect(cfg.Session.SettlingDelay).To(Equal(250 * time.Millisecond))
		Expect(cfg.Letters.SenderAddressLines).To(Equal([]string{"Line One", "Line Two"}))
	})

	It("should reject a sheet base URL without a scheme", func() {
		os.Setenv("APP_SHEET__BASE_URL", "sheet.example.com/banks")
		_, err := config.Load("")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("base_url"))
	})

	It("should reject an unknown log level", func() {
		os.Setenv("APP_LOG__LEVEL", "verbose")
		_, err := config.Load("")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("log level"))
	})
})
