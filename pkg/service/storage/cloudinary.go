package storage

import (
	"context"
	"encoding/base64"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultFolder is the Cloudinary folder issue images are uploaded into
const DefaultFolder = "campus-issues"

// Cloudinary stores issue images in a Cloudinary media library
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ interfaces.ImageStore = (*Cloudinary)(nil)

// NewCloudinary creates a Cloudinary image store from account credentials
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Cloudinary", goerr.V("cloud_name", cloudName))
	}

	return &Cloudinary{cld: cld, folder: DefaultFolder}, nil
}

// Store uploads the image as a data URI and returns its secure URL and public ID
func (c *Cloudinary) Store(ctx context.Context, image *model.ImageUpload) (*model.StoredImage, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, goerr.New("image is empty")
	}

	dataURI := "data:" + image.ContentType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
	resp, err := c.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upload image to Cloudinary", goerr.V("filename", image.Filename))
	}
	if resp.Error.Message != "" {
		return nil, goerr.New("Cloudinary rejected image upload",
			goerr.V("filename", image.Filename),
			goerr.V("message", resp.Error.Message))
	}

	return &model.StoredImage{URL: resp.SecureURL, Ref: resp.PublicID}, nil
}

// Delete destroys the image identified by its public ID
func (c *Cloudinary) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}

	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: ref})
	if err != nil {
		return goerr.Wrap(err, "failed to delete image from Cloudinary", goerr.V("public_id", ref))
	}
	if resp.Error.Message != "" {
		return goerr.New("Cloudinary rejected image deletion",
			goerr.V("public_id", ref),
			goerr.V("message", resp.Error.Message))
	}

	return nil
}
