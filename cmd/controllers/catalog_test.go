package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

type stubCatalogProvider struct {
	grouped      []services.CarrierAuctions
	detail       *services.AuctionDetail
	err          error
	gotCarrierID string
	gotViewerID  string
}

func (s *stubCatalogProvider) BrowseAuctions(ctx context.Context, carrierID string) ([]services.CarrierAuctions, error) {
	s.gotCarrierID = carrierID
	if s.err != nil {
		return nil, s.err
	}
	return s.grouped, nil
}

func (s *stubCatalogProvider) AuctionDetail(ctx context.Context, auctionID string, viewerUserID string) (*services.AuctionDetail, error) {
	s.gotViewerID = viewerUserID
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func newCatalogRouter(t *testing.T, provider CatalogProvider, identity services.Identity) *gin.Engine {
	t.Helper()

	controller, err := NewCatalogController(provider)
	if err != nil {
		t.Fatalf("NewCatalogController: %v", err)
	}

	router := gin.New()
	authed := router.Group("/", setIdentity(identity))
	if err := controller.RegisterRoutes(authed); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	return router
}

func TestBrowseEndpoint(t *testing.T) {
	provider := &stubCatalogProvider{
		grouped: []services.CarrierAuctions{{CarrierID: "carrier-1", CarrierName: "TelNorth"}},
	}
	router := newCatalogRouter(t, provider, clientTestIdentity())

	recorder := performRequest(t, router, http.MethodGet, "/auctions?carrier_id=carrier-1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if provider.gotCarrierID != "carrier-1" {
		t.Fatalf("carrier filter passed = %q", provider.gotCarrierID)
	}

	var resp BrowseResponse
	decodeBody(t, recorder, &resp)
	if len(resp.AuctionsByCarrier) != 1 || resp.AuctionsByCarrier[0].CarrierName != "TelNorth" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestAuctionDetailEndpointViewer(t *testing.T) {
	provider := &stubCatalogProvider{detail: &services.AuctionDetail{CarrierName: "TelNorth"}}
	router := newCatalogRouter(t, provider, clientTestIdentity())

	recorder := performRequest(t, router, http.MethodGet, "/auctions/auction-1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if provider.gotViewerID != "client-1" {
		t.Fatalf("viewer id passed = %q, want the client's id", provider.gotViewerID)
	}
}

func TestAuctionDetailEndpointAdminHasNoStanding(t *testing.T) {
	provider := &stubCatalogProvider{detail: &services.AuctionDetail{}}
	router := newCatalogRouter(t, provider, adminTestIdentity())

	recorder := performRequest(t, router, http.MethodGet, "/auctions/auction-1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if provider.gotViewerID != "" {
		t.Fatalf("viewer id passed = %q, want empty for admins", provider.gotViewerID)
	}
}

func TestAuctionDetailEndpointNotFound(t *testing.T) {
	provider := &stubCatalogProvider{err: services.ErrAuctionNotFound}
	router := newCatalogRouter(t, provider, clientTestIdentity())

	recorder := performRequest(t, router, http.MethodGet, "/auctions/missing", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}
