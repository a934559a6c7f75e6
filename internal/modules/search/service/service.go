package search

import (
	"log"
	"strconv"

	"github.com/meilisearch/meilisearch-go"

	"miuhub.app/communityserver/internal/entity"
)

// SearchService mirrors popups into a search index so admins can find
// campaigns by their denormalized text content. Indexing is best effort; the
// popup subsystem never depends on it.
type SearchService interface {
	IndexPopup(popup *entity.Popup) error
	DeletePopup(id uint) error
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"display_page", "enabled", "is_featured"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index("popups").UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update popups filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at"}
	_, err = s.client.Index("popups").UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update popups sortable attributes: %v", err)
	}

	log.Println("Meilisearch popup index initialized")
}

type meiliPopupDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TextContent string `json:"text_content"`
	DisplayPage string `json:"display_page"`
	Enabled     bool   `json:"enabled"`
	IsFeatured  bool   `json:"is_featured"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *meiliSearchService) IndexPopup(popup *entity.Popup) error {
	if s.client == nil {
		return nil
	}

	doc := meiliPopupDoc{
		ID:          strconv.FormatUint(uint64(popup.ID), 10),
		Title:       popup.Title,
		TextContent: popup.TextContent,
		DisplayPage: popup.Page(),
		Enabled:     popup.Enabled,
		IsFeatured:  popup.IsFeatured,
		CreatedAt:   popup.CreatedAt.Unix(),
	}

	_, err := s.client.Index("popups").AddDocuments([]meiliPopupDoc{doc}, strPtr("id"))
	return err
}

func (s *meiliSearchService) DeletePopup(id uint) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index("popups").DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func strPtr(s string) *string {
	return &s
}
