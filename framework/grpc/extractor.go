package authgrpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
)

// TokenExtractor is a function that extracts a bearer token from the
// incoming call's context. An empty token with a nil error means no
// token was supplied.
type TokenExtractor func(ctx context.Context) (string, error)

// MetadataTokenExtractor extracts the token from the standard
// "authorization" metadata key.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return "", nil
	}

	parts := strings.Fields(values[0])
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("authorization metadata format must be Bearer {token}")
	}

	return parts[1], nil
}
