// Command token mints a signed access token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/ezshop-backend/pkg/auth"
	"github.com/angelmondragon/ezshop-backend/pkg/config"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
)

func main() {
	_ = godotenv.Load()

	username := flag.String("user", "", "username carried in the token")
	roleFlag := flag.String("role", string(enums.RoleCustomer), "customer|manager|admin")
	flag.Parse()

	var jwtCfg config.JWTConfig
	if err := envconfig.Process(config.EnvPrefix, &jwtCfg); err != nil {
		fmt.Fprintf(os.Stderr, "load jwt config: %v\n", err)
		os.Exit(1)
	}

	role, err := enums.ParseRole(*roleFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := auth.MintAccessToken(jwtCfg, time.Now(), auth.AccessTokenPayload{
		Username: *username,
		Role:     role,
		JTI:      uuid.NewString(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
