package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/harmoni-labs/mixtape/config"
	"github.com/harmoni-labs/mixtape/internal/adapters/csvfile"
	"github.com/harmoni-labs/mixtape/internal/core/domain"
	"github.com/harmoni-labs/mixtape/internal/core/services"
)

const defaultCount = 50

func runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	fs.Parse(args)

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	authn, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}
	return authn.Login(ctx)
}

func runLoad(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to load")
	liked := fs.Bool("liked", false, "load your Liked Songs instead of a playlist")
	fs.Parse(args)

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	// load always fetches fresh, bypassing any snapshot.
	var p *domain.Playlist
	switch {
	case *liked && *playlistID != "":
		return errors.New("-playlist and -liked are mutually exclusive")
	case *liked:
		p, err = a.rec.LoadLikedSongs(ctx, fetchProgress(likedProgressLabel))
	case *playlistID != "":
		p, err = a.rec.LoadPlaylist(ctx, *playlistID, fetchProgress(playlistProgressLabel))
	default:
		return errors.New("a playlist is required: pass -playlist <id> or -liked")
	}
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %q: %d songs, %d artists, %d genres\n",
		p.Name, len(p.Songs), p.Artists.Len(), p.Genres.Len())
	return nil
}

func runRecommend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to work on")
	liked := fs.Bool("liked", false, "work on your Liked Songs instead of a playlist")
	song := fs.String("song", "", "base song name (required)")
	artist := fs.String("artist", "", "narrow the base song lookup to this artist")
	k := fs.Int("k", defaultCount, "how many neighbors to return")
	build := fs.Bool("build", false, "write the result back as a playlist")
	withDistance := fs.Bool("with-distance", false, "print the distance column")
	showBase := fs.Bool("show-base", false, "log the base song's audio profile")
	fs.Parse(args)

	if *song == "" {
		return errors.New("-song is required")
	}

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}
	neighbors, err := a.rec.SongRecommendations(ctx, p, services.SongRecommendationsRequest{
		Song:    *song,
		Artist:  *artist,
		Count:   *k,
		Build:   *build,
		LogBase: *showBase,
	})
	if err != nil {
		return err
	}
	printNeighbors(neighbors, *withDistance)
	return nil
}

func runArtist(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("artist", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to work on")
	liked := fs.Bool("liked", false, "work on your Liked Songs instead of a playlist")
	name := fs.String("name", "", "artist name (required)")
	k := fs.Int("k", defaultCount, "how many songs to return")
	mix := fs.Bool("mix", false, "pad the artist's songs with the nearest related ones")
	ensureAll := fs.Bool("ensure-all", false, "keep every song by the artist even past -k")
	build := fs.Bool("build", false, "write the result back as a playlist")
	showBase := fs.Bool("show-base", false, "log the artist profile used for the mix")
	fs.Parse(args)

	if *name == "" {
		return errors.New("-name is required")
	}

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}

	var songs []domain.Song
	if *mix {
		songs, err = a.rec.ArtistRelated(ctx, p, services.ArtistRelatedRequest{
			Artist:  *name,
			Count:   *k,
			Build:   *build,
			LogBase: *showBase,
		})
	} else {
		songs, err = a.rec.ArtistSongs(ctx, p, services.ArtistSongsRequest{
			Artist:    *name,
			Count:     *k,
			EnsureAll: *ensureAll,
			Build:     *build,
		})
	}
	if err != nil {
		return err
	}
	printSongs(songs)
	return nil
}

func runMood(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mood", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to work on")
	liked := fs.Bool("liked", false, "work on your Liked Songs instead of a playlist")
	mood := fs.String("mood", "", "happy, sad, calm or angry (required)")
	k := fs.Int("k", defaultCount, "how many songs to return")
	excludeInstrumental := fs.Bool("exclude-instrumental", false, "drop mostly instrumental songs")
	build := fs.Bool("build", false, "write the result back as a playlist")
	fs.Parse(args)

	if *mood == "" {
		return errors.New("-mood is required")
	}

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}
	songs, err := a.rec.SongsByMood(ctx, p, services.MoodRequest{
		Mood:                      domain.Mood(*mood),
		Count:                     *k,
		ExcludeMostlyInstrumental: *excludeInstrumental,
		Build:                     *build,
	})
	if err != nil {
		return err
	}
	printSongs(songs)
	return nil
}

func runTrends(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trends", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to work on")
	liked := fs.Bool("liked", false, "work on your Liked Songs instead of a playlist")
	timeRange := fs.String("time-range", string(domain.WindowAllTime), "month, trimester, semester, year or all_time")
	kind := fs.String("kind", "all", "genres, artists or all")
	fs.Parse(args)

	if *kind != "all" && *kind != "genres" && *kind != "artists" {
		return fmt.Errorf("unknown trend kind %q", *kind)
	}

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}

	window := domain.TimeWindow(*timeRange)
	if *kind == "all" || *kind == "genres" {
		entries, err := a.rec.TrendingGenres(p, window)
		if err != nil {
			return err
		}
		printTrends("GENRE", entries)
	}
	if *kind == "all" || *kind == "artists" {
		entries, err := a.rec.TrendingArtists(p, window)
		if err != nil {
			return err
		}
		printTrends("ARTIST", entries)
	}
	return nil
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to work on")
	liked := fs.Bool("liked", false, "work on your Liked Songs instead of a playlist")
	fs.Parse(args)

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}

	stats, err := a.rec.AudioFeatureStatistics(p)
	if err != nil {
		return err
	}
	printStats(stats)

	extremes, err := a.rec.ExtraordinarySongs(p)
	if err != nil {
		return err
	}
	fmt.Println()
	printExtremes(extremes)
	return nil
}

func runProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	criteria := fs.String("criteria", string(domain.CriteriaMixed), "mixed, artists, tracks or genres")
	timeRange := fs.String("time-range", string(domain.TermShort), "short_term, medium_term or long_term")
	k := fs.Int("k", defaultCount, "how many recommendations to request")
	dated := fs.Bool("date", false, "append today's date to the generated playlist name")
	build := fs.Bool("build", false, "write the result back as a playlist")
	fs.Parse(args)

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	songs, err := a.rec.ProfileRecommendation(ctx, services.ProfileRecommendationRequest{
		Criteria: domain.Criteria(*criteria),
		Term:     domain.Term(*timeRange),
		Count:    *k,
		Dated:    *dated,
		Build:    *build,
	})
	if err != nil {
		return err
	}
	printSongs(songs)
	return nil
}

func runPlaylistRec(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("playlist-rec", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to work on")
	liked := fs.Bool("liked", false, "work on your Liked Songs instead of a playlist")
	criteria := fs.String("criteria", string(domain.CriteriaMixed), "mixed, artists, tracks or genres")
	timeRange := fs.String("time-range", string(domain.WindowAllTime), "month, trimester, semester, year or all_time")
	k := fs.Int("k", defaultCount, "how many recommendations to request")
	dated := fs.Bool("date", false, "append today's date to the generated playlist name")
	build := fs.Bool("build", false, "write the result back as a playlist")
	fs.Parse(args)

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}
	songs, err := a.rec.PlaylistRecommendation(ctx, p, services.PlaylistRecommendationRequest{
		Criteria: domain.Criteria(*criteria),
		Window:   domain.TimeWindow(*timeRange),
		Count:    *k,
		Dated:    *dated,
		Build:    *build,
	})
	if err != nil {
		return err
	}
	printSongs(songs)
	return nil
}

func runMostListened(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("most-listened", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to mix against (with -mix)")
	liked := fs.Bool("liked", false, "mix against your Liked Songs (with -mix)")
	timeRange := fs.String("time-range", string(domain.TermLong), "short_term, medium_term or long_term")
	k := fs.Int("k", defaultCount, "how many songs to return")
	mix := fs.Bool("mix", false, "return playlist songs nearest to your top tracks instead")
	build := fs.Bool("build", false, "write the result back as a playlist")
	withDistance := fs.Bool("with-distance", false, "print the distance column (with -mix)")
	showBase := fs.Bool("show-base", false, "log the averaged top-tracks profile (with -mix)")
	fs.Parse(args)

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	term := domain.Term(*timeRange)
	if !*mix {
		songs, err := a.rec.MostListened(ctx, term, *k, *build)
		if err != nil {
			return err
		}
		printSongs(songs)
		return nil
	}

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}
	neighbors, err := a.rec.MostListenedBased(ctx, p, services.MostListenedBasedRequest{
		Term:    term,
		Count:   *k,
		Build:   *build,
		LogBase: *showBase,
	})
	if err != nil {
		return err
	}
	printNeighbors(neighbors, *withDistance)
	return nil
}

func runGeneral(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("general", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to tune against (with -tune)")
	liked := fs.Bool("liked", false, "tune against your Liked Songs (with -tune)")
	genres := fs.String("genres", "", "comma-separated seed genres")
	artists := fs.String("artists", "", "comma-separated seed artist names")
	tracks := fs.String("tracks", "", "comma-separated seed track names")
	tune := fs.Bool("tune", false, "tune the result toward a playlist's audio statistics")
	k := fs.Int("k", defaultCount, "how many recommendations to request")
	build := fs.Bool("build", false, "write the result back as a playlist")
	fs.Parse(args)

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	req := services.GeneralRecommendationRequest{
		Genres:  splitList(*genres),
		Artists: splitList(*artists),
		Count:   *k,
		Build:   *build,
	}
	for _, name := range splitList(*tracks) {
		req.Tracks = append(req.Tracks, services.TrackSeed{Name: name})
	}

	if *tune {
		p, err := a.targetPlaylist(ctx, *playlistID, *liked)
		if err != nil {
			return err
		}
		stats, err := a.rec.AudioFeatureStatistics(p)
		if err != nil {
			return err
		}
		req.Stats = &stats
	}

	songs, err := a.rec.GeneralRecommendation(ctx, req)
	if err != nil {
		return err
	}
	printSongs(songs)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the YAML config file")
	playlistID := fs.String("playlist", "", "playlist id to export")
	liked := fs.Bool("liked", false, "export your Liked Songs instead of a playlist")
	out := fs.String("out", "", "output file path (default \"<playlist name>.csv\")")
	fs.Parse(args)

	a, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.targetPlaylist(ctx, *playlistID, *liked)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = p.Name + ".csv"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := csvfile.WritePlaylist(f, *p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Exported %d songs to %s\n", len(p.Songs), path)
	return nil
}

// targetPlaylist resolves the -playlist/-liked pair into a loaded playlist,
// serving a cached snapshot when one exists.
func (a *app) targetPlaylist(ctx context.Context, playlistID string, liked bool) (*domain.Playlist, error) {
	switch {
	case liked && playlistID != "":
		return nil, errors.New("-playlist and -liked are mutually exclusive")
	case liked:
		return a.rec.OpenLikedSongs(ctx, fetchProgress(likedProgressLabel))
	case playlistID != "":
		return a.rec.OpenPlaylist(ctx, playlistID, fetchProgress(playlistProgressLabel))
	default:
		return nil, errors.New("a playlist is required: pass -playlist <id> or -liked")
	}
}
