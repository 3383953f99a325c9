package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/md-rashed-zaman/roombook/libs/auth"
	"github.com/md-rashed-zaman/roombook/libs/config"
)

// devtoken mints an HS256 bearer token for local testing against booking-service.
func main() {
	var (
		sub    = flag.String("sub", config.String("USER_ID", ""), "user id (sub claim)")
		role   = flag.String("role", config.String("ROLE", auth.RoleMember), "role claim (admin or member)")
		org    = flag.String("org", config.String("ORGANIZATION_ID", "default"), "org_id claim")
		email  = flag.String("email", "", "optional email claim")
		ttl    = flag.Duration("ttl", time.Hour, "token lifetime")
		secret = flag.String("secret", config.String("JWT_SECRET", ""), "HS256 signing secret")
	)
	flag.Parse()

	if strings.TrimSpace(*secret) == "" {
		fatal("JWT_SECRET is required")
	}
	if strings.TrimSpace(*sub) == "" {
		fatal("USER_ID is required")
	}
	if *role != auth.RoleAdmin && *role != auth.RoleMember {
		fatal("role must be admin or member")
	}

	now := time.Now().UTC()
	token, err := auth.SignHS256(auth.Claims{
		Sub:   *sub,
		OrgID: *org,
		Role:  *role,
		Email: *email,
		Iat:   now.Unix(),
		Exp:   now.Add(*ttl).Unix(),
	}, *secret)
	if err != nil {
		fatal(err.Error())
	}
	fmt.Println(token)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
