// agent_token emite el JWT que usa el agente de escritorio para /api/sync/*.
//
// Uso: go run ./cmd/agent_token --agent-id tally-pc-01 [--mode real|mock] [--ttl 8760h]
// Firma con SYNC_AGENT_SECRET y SYNC_AGENT_ISSUER de la configuración.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/jhoicas/bitumen-api/pkg/config"
	"github.com/jhoicas/bitumen-api/pkg/jwt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var agentID, mode string
	var ttl time.Duration

	flags := pflag.NewFlagSet("agent_token", pflag.ContinueOnError)
	flags.StringVar(&agentID, "agent-id", "", "identificador del agente (obligatorio)")
	flags.StringVar(&mode, "mode", jwt.ModeReal, "real | mock")
	flags.DurationVar(&ttl, "ttl", 365*24*time.Hour, "vigencia del token")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if agentID == "" {
		return errors.New("--agent-id es obligatorio")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Sync.AgentSecret == "" {
		return errors.New("SYNC_AGENT_SECRET no está definido")
	}
	token, err := jwt.GenerateAgent(cfg.Sync.AgentSecret, cfg.Sync.AgentIssuer, agentID, mode, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
