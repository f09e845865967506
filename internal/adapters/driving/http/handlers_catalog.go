package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// Catalog endpoints

// handleListTitles godoc
// @Summary      List book titles
// @Description  Every distinct title in the catalog, sorted
// @Tags         Books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   string
// @Router       /books/titles [get]
func (s *Server) handleListTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := s.bookService.Titles(r.Context())
	if err != nil {
		s.serverError(w, r, "failed to list titles", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(titles))
}

// handleGetBook godoc
// @Summary      Get book
// @Description  Full details of one book
// @Tags         Books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  domain.Book
// @Failure      400  {object}  ErrorResponse  "Invalid ID"
// @Failure      404  {object}  MessageResponse  "Book not found"
// @Router       /books/{id} [get]
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := s.bookService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "book "+strconv.FormatInt(id, 10)+" not found")
			return
		}
		s.serverError(w, r, "failed to get book", err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// handleSearchBooks godoc
// @Summary      Search books
// @Description  Case-insensitive match on title or category. Without filters the result is empty.
// @Tags         Books
// @Produce      json
// @Security     BearerAuth
// @Param        title     query     string  false  "Title substring"
// @Param        category  query     string  false  "Category substring"
// @Success      200       {array}   domain.BookSummary
// @Router       /books/search [get]
func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = q.Get("genre")
	}

	books, err := s.bookService.Search(r.Context(), domain.BookSearch{Title: q.Get("title"), Category: category})
	if err != nil {
		s.serverError(w, r, "failed to search books", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(books))
}

// handlePriceRange godoc
// @Summary      Books by price
// @Description  Books priced within the inclusive range, cheapest first
// @Tags         Books
// @Produce      json
// @Security     BearerAuth
// @Param        min  query     number  true  "Minimum price"
// @Param        max  query     number  true  "Maximum price"
// @Success      200  {array}   domain.BookSummary
// @Failure      400  {object}  ErrorResponse  "Missing or invalid range"
// @Router       /books/price-range [get]
func (s *Server) handlePriceRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPrice, errMin := strconv.ParseFloat(q.Get("min"), 64)
	maxPrice, errMax := strconv.ParseFloat(q.Get("max"), 64)
	if errMin != nil || errMax != nil {
		writeError(w, http.StatusBadRequest, "min and max are required numbers")
		return
	}

	books, err := s.bookService.ByPriceRange(r.Context(), domain.PriceRange{Min: minPrice, Max: maxPrice})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid price range")
			return
		}
		s.serverError(w, r, "failed to list books", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(books))
}

// handleTopRated godoc
// @Summary      Top rated books
// @Description  Books ordered by star rating, best first
// @Tags         Books
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum results"  default(10)
// @Success      200    {array}   domain.BookSummary
// @Failure      400    {object}  ErrorResponse  "Invalid limit"
// @Router       /books/top-rated [get]
func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultTopRatedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	books, err := s.bookService.TopRated(r.Context(), limit)
	if err != nil {
		s.serverError(w, r, "failed to list books", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(books))
}

// handleListCategories godoc
// @Summary      List categories
// @Description  Every distinct genre, sorted
// @Tags         Books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   string
// @Router       /categories [get]
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.bookService.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, "failed to list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(categories))
}

// Stats endpoints

// handleStatsOverview godoc
// @Summary      Catalog overview
// @Description  Total books, average price and rating distribution
// @Tags         Stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.StatsOverview
// @Failure      404  {object}  MessageResponse  "Empty catalog"
// @Router       /stats/overview [get]
func (s *Server) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.statsService.Overview(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "no statistics available")
			return
		}
		s.serverError(w, r, "failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// handleStatsCategories godoc
// @Summary      Category statistics
// @Description  Book count and average price per genre
// @Tags         Stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.CategoryStats
// @Failure      404  {object}  MessageResponse  "Empty catalog"
// @Router       /stats/categories [get]
func (s *Server) handleStatsCategories(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsService.Categories(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "no category statistics available")
			return
		}
		s.serverError(w, r, "failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Scrape endpoint

// handleScrape godoc
// @Summary      Refresh the catalog
// @Description  Crawl the catalog site and replace every stored book (admin only)
// @Tags         Scrape
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ScrapeResult
// @Failure      409  {object}  ErrorResponse  "A scrape is already running"
// @Failure      502  {object}  ErrorResponse  "Catalog site unreachable"
// @Router       /scrape [post]
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	result, err := s.scrapeService.Run(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrServiceUnavailable) {
			writeError(w, http.StatusConflict, "a scrape is already running")
			return
		}
		s.logger.Error("scrape failed", "error", err)
		writeError(w, http.StatusBadGateway, "scrape failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// nonNil keeps empty lists encoded as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
