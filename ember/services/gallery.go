package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

// GalleryService archives message attachments into Spaces object storage
// and tracks them per user through the media repository.
type GalleryService struct {
	client      *s3.Client
	httpClient  *http.Client
	media       repositories.MediaRepository
	bucket      string
	region      string
	GalleryRoot string
}

func NewGalleryService(spacesKey, spacesSecret, region, bucket, galleryRoot string, media repositories.MediaRepository) (*GalleryService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &GalleryService{
		client:      s3.NewFromConfig(cfg),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		media:       media,
		bucket:      bucket,
		region:      region,
		GalleryRoot: strings.TrimPrefix(galleryRoot, "/"),
	}, nil
}

// Archive downloads an attachment and stores it under the user's gallery
// prefix, recording a media row on success.
func (s *GalleryService) Archive(ctx context.Context, userID, guildID, messageID, fileName, contentType, sourceURL string) (*models.MediaItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build attachment request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment body: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s/%d_%s", s.GalleryRoot, guildID, userID, time.Now().UnixMilli(), fileName)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	item := &models.MediaItem{
		UserID:      userID,
		GuildID:     guildID,
		ObjectKey:   key,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(body)),
		MessageID:   messageID,
		CreatedAt:   time.Now(),
	}
	if err := s.media.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to record media item: %w", err)
	}
	return item, nil
}

// List returns the user's most recent archived items.
func (s *GalleryService) List(ctx context.Context, userID, guildID string, limit int) ([]*models.MediaItem, error) {
	return s.media.ListByUser(ctx, userID, guildID, limit)
}

// Remove deletes one archived item, object first, then the row.
func (s *GalleryService) Remove(ctx context.Context, id int64) error {
	item, err := s.media.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &item.ObjectKey,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", item.ObjectKey, err)
	}

	return s.media.Delete(ctx, id)
}

// PublicURL is the CDN address of an archived object.
func (s *GalleryService) PublicURL(item *models.MediaItem) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, item.ObjectKey)
}
