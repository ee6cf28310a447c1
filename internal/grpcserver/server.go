package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"popflix/internal/index"
	"popflix/internal/logging"
	"popflix/internal/metrics"
	"popflix/internal/poster"
	"popflix/internal/recommend"
	"popflix/internal/similarity"
	"popflix/pkg/grpc/moviepb"
)

type Server struct {
	moviepb.UnimplementedRecommendServiceServer
	Svc     *recommend.Service
	Posters *poster.Client // optional
}

func NewServer(svc *recommend.Service, posters *poster.Client) *Server {
	return &Server{Svc: svc, Posters: posters}
}

func (s *Server) Recommend(ctx context.Context, req *moviepb.RecommendRequest) (*moviepb.RecommendResponse, error) {
	title := strings.TrimSpace(req.GetTitle())
	if title == "" {
		metrics.RecommendationsTotal.WithLabelValues("grpc", "bad_request").Inc()
		return nil, status.Error(codes.InvalidArgument, "title required")
	}
	if req.GetK() < 0 {
		metrics.RecommendationsTotal.WithLabelValues("grpc", "invalid_k").Inc()
		return nil, status.Error(codes.InvalidArgument, similarity.ErrInvalidK.Error())
	}

	k := int(req.GetK())
	if k == 0 {
		k = s.Svc.DefaultK()
	}
	recs, err := s.Svc.Recommend(title, k)
	if err != nil {
		outcome, _ := recommend.Classify(err)
		metrics.RecommendationsTotal.WithLabelValues("grpc", outcome).Inc()
		return nil, toStatus(err)
	}
	metrics.RecommendationsTotal.WithLabelValues("grpc", "ok").Inc()

	resp := &moviepb.RecommendResponse{
		Title: title,
		K:     int32(k),
		Items: make([]*moviepb.Recommendation, 0, len(recs)),
	}
	urls := make([]string, len(recs))
	if s.Posters != nil {
		for i, it := range s.Posters.Decorate(ctx, recs) {
			urls[i] = it.PosterURL
		}
	}
	for i, r := range recs {
		resp.Items = append(resp.Items, &moviepb.Recommendation{
			Title:     r.Title,
			Id:        int64(r.ID),
			Score:     r.Score,
			PosterUrl: urls[i],
		})
	}
	return resp, nil
}

func (s *Server) ListTitles(ctx context.Context, _ *moviepb.ListTitlesRequest) (*moviepb.ListTitlesResponse, error) {
	titles, err := s.Svc.Titles()
	if err != nil {
		return nil, toStatus(err)
	}
	return &moviepb.ListTitlesResponse{Titles: titles}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, similarity.ErrTitleNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, similarity.ErrInvalidK):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, index.ErrNotLoaded):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "recommend failed")
	}
}

// LoggingInterceptor logs one line per unary call.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	log := logging.With("grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		ev := log.Info()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("latency", time.Since(start)).
			Msg("grpc request")
		return resp, err
	}
}
