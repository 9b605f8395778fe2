package roon

import "roonmpris/internal/domain"

// Wire DTOs for the transport feed. Field names follow the protocol's
// JSON shape; conversion into domain values happens in decode.go.

type threeLinePayload struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
	Line3 string `json:"line3"`
}

type nowPlayingPayload struct {
	Length       *float64         `json:"length"`
	ImageKey     string           `json:"image_key"`
	SeekPosition float64          `json:"seek_position"`
	ThreeLine    threeLinePayload `json:"three_line"`
}

type zonePayload struct {
	ZoneID            string             `json:"zone_id"`
	DisplayName       string             `json:"display_name"`
	State             string             `json:"state"`
	IsNextAllowed     bool               `json:"is_next_allowed"`
	IsPreviousAllowed bool               `json:"is_previous_allowed"`
	IsPauseAllowed    bool               `json:"is_pause_allowed"`
	IsPlayAllowed     bool               `json:"is_play_allowed"`
	IsSeekAllowed     bool               `json:"is_seek_allowed"`
	NowPlaying        *nowPlayingPayload `json:"now_playing"`
}

type seekPayload struct {
	ZoneID       string  `json:"zone_id"`
	SeekPosition float64 `json:"seek_position"`
}

type corePayload struct {
	CoreID      string `json:"core_id"`
	DisplayName string `json:"display_name"`
	Address     string `json:"address"`
}

type controlPayload struct {
	ZoneOrOutputID string `json:"zone_or_output_id"`
	Control        string `json:"control"`
}

func (z zonePayload) toDomain() (domain.Zone, error) {
	state, err := domain.ParsePlayState(z.State)
	if err != nil {
		return domain.Zone{}, err
	}
	zone := domain.Zone{
		ID:            z.ZoneID,
		DisplayName:   z.DisplayName,
		State:         state,
		CanGoNext:     z.IsNextAllowed,
		CanGoPrevious: z.IsPreviousAllowed,
		CanPause:      z.IsPauseAllowed,
		CanSeek:       z.IsSeekAllowed,
		CanPlay:       z.IsPlayAllowed,
	}
	if np := z.NowPlaying; np != nil {
		zone.NowPlaying = &domain.NowPlaying{
			DurationSec:     np.Length,
			ImageKey:        np.ImageKey,
			Title:           np.ThreeLine.Line1,
			ArtistLine:      np.ThreeLine.Line2,
			Album:           np.ThreeLine.Line3,
			SeekPositionSec: np.SeekPosition,
		}
	}
	return zone, nil
}
