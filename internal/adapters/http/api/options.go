package api

import "github.com/okian/repute/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultLeaderboardLimit sets the page size used when the limit
// query parameter is absent.
func WithDefaultLeaderboardLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.leaderboardHandler.defaultLimit = limit
		}
	}
}
