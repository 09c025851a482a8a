package domain

import "context"

// PhotoSource performs the network search. Implementations must be safe for
// concurrent use since page fetches run as independent commands.
type PhotoSource interface {
	SearchPhotos(ctx context.Context, query string, page, perPage int, opts SearchOptions) (*SearchPage, error)

	// TrackDownload notifies the API that a photo was chosen.
	TrackDownload(ctx context.Context, photo Photo) error
}
