package enrichment

import (
	"context"
	"errors"
	"testing"

	"media-browser/internal/media"
)

type fakeService struct {
	resp  Response
	err   error
	calls []Request
}

func (f *fakeService) CreateThumbnail(_ context.Context, req Request) (Response, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func TestClient_Enrich(t *testing.T) {
	req := Request{Path: "/r/a.jpg", ThumbnailPath: "/r/.media-browser/a.jpg.jpg", WantThumbnail: true, WantProperties: true}

	t.Run("success", func(t *testing.T) {
		svc := &fakeService{resp: Response{Properties: "ContentType\t\"image/jpeg\"\r\nImage.HorizontalSize\t10"}}
		props, err := NewClient(svc).Enrich(context.Background(), req)
		if err != nil {
			t.Fatalf("Enrich() error = %v", err)
		}
		if props.ContentType != "image/jpeg" || props.Width != 10 {
			t.Errorf("Enrich() = %+v", props)
		}
		if len(svc.calls) != 1 || svc.calls[0] != req {
			t.Errorf("service calls = %+v", svc.calls)
		}
	})

	t.Run("exception", func(t *testing.T) {
		svc := &fakeService{resp: Response{Exception: "no thumbnail handler"}}
		_, err := NewClient(svc).Enrich(context.Background(), req)
		var failure *Failure
		if !errors.As(err, &failure) {
			t.Fatalf("Enrich() error = %v, want *Failure", err)
		}
		if failure.Path != req.Path || failure.Message != "no thumbnail handler" {
			t.Errorf("Failure = %+v", failure)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		svc := &fakeService{err: errors.New("broken pipe")}
		_, err := NewClient(svc).Enrich(context.Background(), req)
		var failure *Failure
		if !errors.As(err, &failure) || failure.Message != "broken pipe" {
			t.Fatalf("Enrich() error = %v, want *Failure wrapping transport error", err)
		}
	})

	t.Run("cancelled before call", func(t *testing.T) {
		svc := &fakeService{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(svc).Enrich(ctx, req)
		if !errors.Is(err, media.ErrCancelled) {
			t.Fatalf("Enrich() error = %v, want ErrCancelled", err)
		}
		if len(svc.calls) != 0 {
			t.Error("service called after cancellation")
		}
	})

	t.Run("thumbnail only", func(t *testing.T) {
		svc := &fakeService{resp: Response{Properties: "Rating\t99"}}
		thumbOnly := req
		thumbOnly.WantProperties = false
		props, err := NewClient(svc).Enrich(context.Background(), thumbOnly)
		if err != nil {
			t.Fatalf("Enrich() error = %v", err)
		}
		if props != (media.FileProperties{}) {
			t.Errorf("Enrich() = %+v, want zero properties", props)
		}
	})
}
