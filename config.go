package main

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Port configuration based on environment
var (
	HTTP_PORT  int
	HTTPS_PORT int
)

var debugMode bool

func init() {
	debugMode = os.Getenv("DEBUG_MODE") == "true"

	// Check for high-port development mode
	if highPortMode() {
		log.Println("Running in HIGH_PORT_MODE - using non-privileged ports")
		HTTP_PORT = 8080  // Instead of 80
		HTTPS_PORT = 8443 // Instead of 443
	} else {
		// Production mode - standard ports
		HTTP_PORT = 80
		HTTPS_PORT = 443
	}

	// Explicit overrides, 0 disables the listener
	HTTP_PORT = envPort("HTTP_PORT", HTTP_PORT)
	HTTPS_PORT = envPort("HTTPS_PORT", HTTPS_PORT)

	log.Printf("Port configuration: HTTP=%d, HTTPS=%d", HTTP_PORT, HTTPS_PORT)
}

func highPortMode() bool {
	return os.Getenv("HIGH_PORT_MODE") == "true"
}

func envPort(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	port, err := strconv.Atoi(v)
	if err != nil || port < 0 || port > 65535 {
		log.Printf("Ignoring invalid %s=%q", name, v)
		return fallback
	}
	return port
}

// configDir is where chatui.yaml is looked up
func configDir() string {
	if dir := os.Getenv("CHATUI_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

// findSSLCertificates looks for SSL certificates in common locations
func findSSLCertificates() (certPath, keyPath string, found bool) {
	// First, check working directory
	if fileExists("cert.pem") && fileExists("key.pem") {
		return "cert.pem", "key.pem", true
	}

	// Check for Let's Encrypt certificates
	domain := os.Getenv("BASE_DOMAIN")
	if domain == "" {
		return "", "", false
	}

	letsEncryptPaths := []string{
		filepath.Join("/etc/letsencrypt/live", domain),
		filepath.Join("/etc/letsencrypt/live", "chat."+domain),
	}

	for _, basePath := range letsEncryptPaths {
		certFile := filepath.Join(basePath, "fullchain.pem")
		keyFile := filepath.Join(basePath, "privkey.pem")

		if fileExists(certFile) && fileExists(keyFile) {
			log.Printf("Found Let's Encrypt certificates at %s", basePath)
			return certFile, keyFile, true
		}
	}

	return "", "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
