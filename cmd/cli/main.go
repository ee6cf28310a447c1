package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"popflix/internal/app"
	"popflix/internal/auth"
	"popflix/internal/index"
	"popflix/internal/logging"
	"popflix/internal/recommend"
	"popflix/pkg/grpc/moviepb"
	"popflix/pkg/models"
	"popflix/pkg/utils"
)

const defaultBaseURL = "http://localhost:8080"

type movieListResponse struct {
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Items  []models.MovieDB `json:"items"`
}

type titlesResponse struct {
	Total  int      `json:"total"`
	Titles []string `json:"titles"`
}

func main() {
	logging.Init(logging.Config{Format: "console"})

	global := flag.NewFlagSet("popflix", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	grpcAddr := global.String("grpc", "", "gRPC address; when set, recommend and titles use gRPC")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	rest := args[1:]
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "recommend":
		handleRecommend(ctx, client, *baseURL, *grpcAddr, rest)
	case "titles":
		handleTitles(ctx, client, *baseURL, *grpcAddr)
	case "movies":
		handleMovies(ctx, client, *baseURL, sub, args[min(2, len(args)):])
	case "admin":
		handleAdmin(ctx, client, *baseURL, *tokenPath, sub, args[min(2, len(args)):])
	case "events":
		handleEvents(*baseURL, sub, args[min(2, len(args)):])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleRecommend(ctx context.Context, client *http.Client, baseURL, grpcAddr string, args []string) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	title := fs.String("title", "", "movie title, exact match")
	k := fs.Int("k", 0, "number of recommendations (server default when 0)")
	_ = fs.Parse(args)
	if *title == "" {
		logging.Fatal().Msg("-title is required")
	}

	if grpcAddr != "" {
		rc, closeConn := dialGRPC(grpcAddr)
		defer closeConn()
		resp, err := rc.Recommend(ctx, &moviepb.RecommendRequest{Title: *title, K: int32(*k)})
		if err != nil {
			logging.Fatal().Err(err).Msg("recommend failed")
		}
		printJSON(resp)
		return
	}

	u, err := url.Parse(baseURL + "/recommendations")
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid base url")
	}
	qv := u.Query()
	qv.Set("title", *title)
	if *k > 0 {
		qv.Set("k", strconv.Itoa(*k))
	}
	u.RawQuery = qv.Encode()

	var resp recommend.RecommendationsResponse
	if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
		logging.Fatal().Err(err).Msg("recommend failed")
	}
	for i, it := range resp.Items {
		fmt.Printf("%d. %s (id %d, score %.4f)\n   %s\n", i+1, it.Title, it.ID, it.Score, it.PosterURL)
	}
}

func handleTitles(ctx context.Context, client *http.Client, baseURL, grpcAddr string) {
	var titles []string
	if grpcAddr != "" {
		rc, closeConn := dialGRPC(grpcAddr)
		defer closeConn()
		resp, err := rc.ListTitles(ctx, &moviepb.ListTitlesRequest{})
		if err != nil {
			logging.Fatal().Err(err).Msg("titles failed")
		}
		titles = resp.Titles
	} else {
		var resp titlesResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/titles", "", nil, &resp); err != nil {
			logging.Fatal().Err(err).Msg("titles failed")
		}
		titles = resp.Titles
	}
	for _, t := range titles {
		fmt.Println(t)
	}
}

func handleMovies(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "search":
		fs := flag.NewFlagSet("movies search", flag.ExitOnError)
		query := fs.String("q", "", "search query (title, director, cast)")
		genre := fs.String("genre", "", "genre filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/movies")
		if err != nil {
			logging.Fatal().Err(err).Msg("invalid base url")
		}
		qv := u.Query()
		if *query != "" {
			qv.Set("q", *query)
		}
		if *genre != "" {
			qv.Set("genre", *genre)
		}
		qv.Set("limit", strconv.Itoa(*limit))
		qv.Set("offset", strconv.Itoa(*offset))
		u.RawQuery = qv.Encode()

		var resp movieListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			logging.Fatal().Err(err).Msg("search failed")
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("movies show", flag.ExitOnError)
		id := fs.Int("id", 0, "movie id")
		_ = fs.Parse(args)
		if *id == 0 {
			logging.Fatal().Msg("movie id is required")
		}

		var resp models.MovieDB
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/movies/"+strconv.Itoa(*id), "", nil, &resp); err != nil {
			logging.Fatal().Err(err).Msg("show failed")
		}
		printJSON(resp)
	default:
		logging.Fatal().Msg("usage: popflix movies <search|show>")
	}
}

func handleAdmin(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "token":
		fs := flag.NewFlagSet("admin token", flag.ExitOnError)
		subject := fs.String("subject", "admin", "token subject")
		_ = fs.Parse(args)

		// Signs with the server's configured secret, so run it where the config lives.
		cfg, err := utils.Load()
		if err != nil {
			logging.Fatal().Err(err).Msg("load config")
		}
		token, exp, err := app.Tokens(cfg).Sign(*subject, auth.RoleAdmin)
		if err != nil {
			logging.Fatal().Err(err).Msg("sign token")
		}
		if err := saveToken(tokenPath, token); err != nil {
			logging.Fatal().Err(err).Msg("save token")
		}
		fmt.Printf("token saved to %s (expires %s)\n", tokenPath, exp.Format(time.RFC3339))
	case "reload":
		token := mustToken(tokenPath)
		var info index.BuildInfo
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/admin/reload", token, nil, &info); err != nil {
			logging.Fatal().Err(err).Msg("reload failed")
		}
		printJSON(info)
	default:
		logging.Fatal().Msg("usage: popflix admin <token|reload>")
	}
}

func handleEvents(baseURL, sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("events listen", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				logging.Fatal().Err(err).Msg("ws url")
			}
		}
		if err := runWebSocket(endpoint); err != nil {
			logging.Fatal().Err(err).Msg("listen failed")
		}
	default:
		logging.Fatal().Msg("usage: popflix events listen")
	}
}

func dialGRPC(addr string) (moviepb.RecommendServiceClient, func()) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logging.Fatal().Err(err).Str("addr", addr).Msg("grpc dial")
	}
	return moviepb.NewRecommendServiceClient(conn), func() { _ = conn.Close() }
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	logging.Info().Str("url", wsURL).Msg("connected")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func printUsage() {
	fmt.Println("popflix [-api url] [-grpc addr] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  recommend -title <title> [-k n]")
	fmt.Println("  titles")
	fmt.Println("  movies search|show")
	fmt.Println("  admin token|reload")
	fmt.Println("  events listen")
}
