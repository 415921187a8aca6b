package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/internal/store"
)

var servePort int

// scraperResultRow mirrors the scraper export's column names on the wire.
type scraperResultRow struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfileURL        string `json:"linkedinProfileUrl"`
	ProfessionalEmail string `json:"professionalEmail"`
	JobTitle          string `json:"linkedinJobTitle"`
	CompanyName       string `json:"companyName"`
	CompanyIndustry   string `json:"companyIndustry"`
	Location          string `json:"location"`
	Headline          string `json:"linkedinHeadline"`
	SchoolName        string `json:"linkedinSchoolName"`
	SchoolDegree      string `json:"linkedinSchoolDegree"`
	PrevCompany       string `json:"previousCompanyName"`
	PrevJobTitle      string `json:"linkedinPreviousJobTitle"`
	JobLocation       string `json:"linkedinJobLocation"`
	CompanySlug       string `json:"linkedinCompanySlug"`
}

func (r scraperResultRow) profile() model.ScraperProfile {
	return model.ScraperProfile{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		ProfileURL:        r.ProfileURL,
		ProfessionalEmail: r.ProfessionalEmail,
		JobTitle:          r.JobTitle,
		CompanyName:       r.CompanyName,
		CompanyIndustry:   r.CompanyIndustry,
		Location:          r.Location,
		Headline:          r.Headline,
		SchoolName:        r.SchoolName,
		SchoolDegree:      r.SchoolDegree,
		PrevCompany:       r.PrevCompany,
		PrevJobTitle:      r.PrevJobTitle,
		JobLocation:       r.JobLocation,
		CompanySlug:       r.CompanySlug,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  "Serves run history and accepts completed scraper rows, applying the enrich gap-fill to matching contacts as results arrive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		enrichPipeline, cleanup, err := newEnrichPipeline(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		st := openStore(ctx)
		defer closeStore(st)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			if st == nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run ledger unavailable"})
				return
			}
			runs, err := st.ListRuns(req.Context(), store.RunFilter{
				Pipeline: req.URL.Query().Get("pipeline"),
				Status:   model.RunStatus(req.URL.Query().Get("status")),
			})
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
		})

		r.Post("/webhook/scraper-results", func(w http.ResponseWriter, req *http.Request) {
			var rows []scraperResultRow
			if err := json.NewDecoder(req.Body).Decode(&rows); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if len(rows) == 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no rows"})
				return
			}

			profiles := make([]model.ScraperProfile, 0, len(rows))
			for _, row := range rows {
				profiles = append(profiles, row.profile())
			}

			summary, err := enrichPipeline.ApplyScraperRows(req.Context(), profiles)
			if err != nil {
				zap.L().Error("apply scraper results failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "apply failed"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "summary": summary})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
