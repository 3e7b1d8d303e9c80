package publish

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/voxcast/voxcast/internal/domain/entities"
)

const itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type itunesCategory struct {
	Text string `xml:"text,attr"`
}

type itunesOwner struct {
	Name  string `xml:"itunes:name"`
	Email string `xml:"itunes:email"`
}

type itunesImage struct {
	Href string `xml:"href,attr"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length string `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssItem struct {
	GUID              rssGUID      `xml:"guid"`
	Title             string       `xml:"title"`
	Description       string       `xml:"description"`
	PubDate           string       `xml:"pubDate"`
	Enclosure         rssEnclosure `xml:"enclosure"`
	ITunesDuration    string       `xml:"itunes:duration"`
	ITunesExplicit    string       `xml:"itunes:explicit"`
	ITunesImage       *itunesImage `xml:"itunes:image,omitempty"`
	ITunesEpisode     string       `xml:"itunes:episode,omitempty"`
	ITunesSeason      string       `xml:"itunes:season,omitempty"`
	ITunesEpisodeType string       `xml:"itunes:episodeType"`
}

type rssChannel struct {
	Title          string         `xml:"title"`
	Description    string         `xml:"description"`
	Link           string         `xml:"link"`
	Language       string         `xml:"language"`
	Copyright      string         `xml:"copyright,omitempty"`
	Image          *rssImage      `xml:"image,omitempty"`
	ITunesAuthor   string         `xml:"itunes:author"`
	ITunesOwner    itunesOwner    `xml:"itunes:owner"`
	ITunesCategory itunesCategory `xml:"itunes:category"`
	ITunesExplicit string         `xml:"itunes:explicit"`
	ITunesImage    *itunesImage   `xml:"itunes:image,omitempty"`
	Items          []rssItem      `xml:"item"`
}

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

// GenerateFeedXML serializes a feed and its episodes as RSS 2.0 with iTunes
// tags. Episodes are expected newest-first; order is preserved as given.
func GenerateFeedXML(feed *entities.Feed, episodes []*entities.Episode) (string, error) {
	channel := rssChannel{
		Title:        feed.Title,
		Description:  feed.Description,
		Link:         feed.Website,
		Language:     feed.Language,
		ITunesAuthor: feed.Author,
		ITunesOwner: itunesOwner{
			Name:  feed.Author,
			Email: feed.Email,
		},
		ITunesCategory: itunesCategory{Text: feed.PrimaryCategory()},
		ITunesExplicit: explicitLabel(feed.Explicit),
	}

	if feed.Copyright != nil {
		channel.Copyright = *feed.Copyright
	}
	if feed.ImageURL != nil {
		channel.Image = &rssImage{URL: *feed.ImageURL, Title: feed.Title, Link: feed.Website}
		channel.ITunesImage = &itunesImage{Href: *feed.ImageURL}
	}

	for _, ep := range episodes {
		item := rssItem{
			GUID:        rssGUID{IsPermaLink: "false", Value: ep.GUID},
			Title:       ep.Title,
			Description: ep.Description,
			PubDate:     ep.PublicationDate.UTC().Format(time.RFC1123Z),
			Enclosure: rssEnclosure{
				URL:    ep.AudioURL,
				Length: strconv.FormatInt(ep.FileSize, 10),
				Type:   ep.MimeType,
			},
			ITunesDuration:    durationLabel(ep.Duration),
			ITunesExplicit:    ep.Explicit,
			ITunesEpisodeType: string(ep.EpisodeType),
		}
		if ep.ImageURL != nil {
			item.ITunesImage = &itunesImage{Href: *ep.ImageURL}
		}
		if ep.EpisodeNumber > 0 {
			item.ITunesEpisode = strconv.Itoa(ep.EpisodeNumber)
		}
		if ep.SeasonNumber > 0 {
			item.ITunesSeason = strconv.Itoa(ep.SeasonNumber)
		}
		channel.Items = append(channel.Items, item)
	}

	out, err := xml.MarshalIndent(rssFeed{
		Version:  "2.0",
		ITunesNS: itunesNamespace,
		Channel:  channel,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(out), nil
}

func explicitLabel(explicit bool) string {
	if explicit {
		return "yes"
	}
	return "no"
}

// durationLabel renders seconds for itunes:duration, defaulting to "0"
// when the duration could not be probed.
func durationLabel(seconds *int) string {
	if seconds == nil {
		return "0"
	}
	return strconv.Itoa(*seconds)
}
