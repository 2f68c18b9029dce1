package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osamo/dreamshops/internal/domain"
	apperrors "github.com/osamo/dreamshops/pkg/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type imageFixture struct {
	images    *mockImageRepository
	products  *mockProductRepository
	tx        *inlineTx
	publisher *mockPublisher
	svc       *ImageService
}

func newImageFixture() *imageFixture {
	f := &imageFixture{
		images:    new(mockImageRepository),
		products:  new(mockProductRepository),
		tx:        &inlineTx{},
		publisher: new(mockPublisher),
	}
	f.svc = NewImageService(ImageServiceDeps{
		Images:       f.images,
		Products:     f.products,
		Tx:           f.tx,
		Publisher:    f.publisher,
		ImageBaseURL: testImageBaseURL,
		MaxBytes:     1024,
	}, newTestLogger())
	return f
}

func pngFile(name string) domain.UploadedFile {
	return domain.UploadedFile{FileName: name, ContentType: "image/png", Data: pngHeader}
}

// --- SaveImages ---

func TestSaveImages_Success(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	nextID := int64(0)
	f.products.On("GetByID", ctx, int64(10)).Return(sampleProduct(), nil)
	f.images.On("Create", ctx, mock.MatchedBy(func(img *domain.Image) bool {
		return img.ProductID == 10 && img.FileType == "image/png"
	})).Run(func(args mock.Arguments) {
		nextID++
		args.Get(1).(*domain.Image).ID = nextID
	}).Return(nil)
	f.publisher.On("PublishImageUploaded", ctx, mock.Anything).Return(nil)

	dtos, err := f.svc.SaveImages(ctx, 10, []domain.UploadedFile{pngFile("front.png"), pngFile("back.png")})

	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, domain.ImageDTO{
		ID:          1,
		FileName:    "front.png",
		FileType:    "image/png",
		DownloadURL: "/api/v1/images/download/1",
	}, dtos[0])
	assert.Equal(t, "/api/v1/images/download/2", dtos[1].DownloadURL)
	f.images.AssertNumberOfCalls(t, "Create", 2)
	f.publisher.AssertNumberOfCalls(t, "PublishImageUploaded", 2)
}

func TestSaveImages_RejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []domain.UploadedFile
	}{
		{name: "no files", files: nil},
		{name: "empty file", files: []domain.UploadedFile{{FileName: "a.png", ContentType: "image/png"}}},
		{name: "too large", files: []domain.UploadedFile{{
			FileName: "big.png", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, 2048),
		}}},
		{name: "not an image", files: []domain.UploadedFile{{
			FileName: "notes.txt", ContentType: "text/plain", Data: []byte("hello"),
		}}},
		{name: "missing name", files: []domain.UploadedFile{{ContentType: "image/png", Data: pngHeader}}},
		{name: "text labelled as png", files: []domain.UploadedFile{{
			FileName: "fake.png", ContentType: "image/png", Data: []byte("not really a picture"),
		}}},
		{name: "markup labelled as svg", files: []domain.UploadedFile{{
			FileName: "fake.svg", ContentType: "image/svg+xml", Data: []byte("<html><script>alert(1)</script></html>"),
		}}},
		{name: "png labelled as jpeg", files: []domain.UploadedFile{{
			FileName: "photo.jpg", ContentType: "image/jpeg", Data: pngHeader,
		}}},
		{name: "one bad file fails the batch", files: []domain.UploadedFile{
			pngFile("ok.png"),
			{FileName: "script.sh", ContentType: "application/x-sh", Data: []byte("#!/bin/sh")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImageFixture()

			dtos, err := f.svc.SaveImages(context.Background(), 10, tt.files)

			assert.Nil(t, dtos)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Zero(t, f.tx.calls)
			f.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSaveImages_SniffsGenericContentType(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, int64(10)).Return(sampleProduct(), nil)
	f.images.On("Create", ctx, mock.MatchedBy(func(img *domain.Image) bool {
		return img.FileType == "image/png"
	})).Return(nil)
	f.publisher.On("PublishImageUploaded", ctx, mock.Anything).Return(nil)

	dtos, err := f.svc.SaveImages(ctx, 10, []domain.UploadedFile{{
		FileName:    "photo",
		ContentType: "application/octet-stream",
		Data:        pngHeader,
	}})

	require.NoError(t, err)
	assert.Equal(t, "image/png", dtos[0].FileType)
	f.images.AssertExpectations(t)
}

func TestSaveImages_DeclaredTypeParametersIgnored(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, int64(10)).Return(sampleProduct(), nil)
	f.images.On("Create", ctx, mock.MatchedBy(func(img *domain.Image) bool {
		return img.FileType == "image/png"
	})).Return(nil)
	f.publisher.On("PublishImageUploaded", ctx, mock.Anything).Return(nil)

	_, err := f.svc.SaveImages(ctx, 10, []domain.UploadedFile{{
		FileName:    "photo.png",
		ContentType: "IMAGE/PNG; name=photo.png",
		Data:        pngHeader,
	}})

	require.NoError(t, err)
	f.images.AssertExpectations(t)
}

func TestSaveImages_StripsDirectoriesFromFileName(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, int64(10)).Return(sampleProduct(), nil)
	f.images.On("Create", ctx, mock.MatchedBy(func(img *domain.Image) bool {
		return img.FileName == "shoe.png"
	})).Return(nil)
	f.publisher.On("PublishImageUploaded", ctx, mock.Anything).Return(nil)

	_, err := f.svc.SaveImages(ctx, 10, []domain.UploadedFile{pngFile(`C:\Users\me\shoe.png`)})

	require.NoError(t, err)
	f.images.AssertExpectations(t)
}

func TestSaveImages_UnknownProduct(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, int64(404)).Return(nil, apperrors.NotFound("product", int64(404)))

	dtos, err := f.svc.SaveImages(ctx, 404, []domain.UploadedFile{pngFile("a.png")})

	assert.Nil(t, dtos)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishImageUploaded", mock.Anything, mock.Anything)
}

func TestSaveImages_PublishFailureIsNotAnError(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.products.On("GetByID", ctx, int64(10)).Return(sampleProduct(), nil)
	f.images.On("Create", ctx, mock.Anything).Return(nil)
	f.publisher.On("PublishImageUploaded", ctx, mock.Anything).Return(errors.New("broker down"))

	dtos, err := f.svc.SaveImages(ctx, 10, []domain.UploadedFile{pngFile("a.png")})

	require.NoError(t, err)
	assert.Len(t, dtos, 1)
}

// --- GetImage ---

func TestGetImage(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	stored := &domain.Image{ID: 3, FileName: "a.png", FileType: "image/png", Data: pngHeader, ProductID: 10}
	f.images.On("GetByID", ctx, int64(3)).Return(stored, nil)
	f.images.On("GetByID", ctx, int64(404)).Return(nil, apperrors.NotFound("image", int64(404)))

	img, err := f.svc.GetImage(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, img.Data)

	_, err = f.svc.GetImage(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- UpdateImage ---

func TestUpdateImage_Success(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.images.On("Update", ctx, mock.MatchedBy(func(img *domain.Image) bool {
		return img.ID == 3 && img.FileName == "new.png" && img.Size == int64(len(pngHeader))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Image).ProductID = 10
	}).Return(nil)
	f.publisher.On("PublishImageUpdated", ctx, mock.Anything).Return(nil)

	dto, err := f.svc.UpdateImage(ctx, 3, pngFile("new.png"))

	require.NoError(t, err)
	assert.Equal(t, int64(3), dto.ID)
	assert.Equal(t, "/api/v1/images/download/3", dto.DownloadURL)
	f.images.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestUpdateImage_NotFound(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.images.On("Update", ctx, mock.Anything).Return(apperrors.NotFound("image", int64(404)))

	dto, err := f.svc.UpdateImage(ctx, 404, pngFile("new.png"))

	assert.Nil(t, dto)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.publisher.AssertNotCalled(t, "PublishImageUpdated", mock.Anything, mock.Anything)
}

func TestUpdateImage_InvalidFile(t *testing.T) {
	f := newImageFixture()

	_, err := f.svc.UpdateImage(context.Background(), 3, domain.UploadedFile{FileName: "a.png"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.images.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- DeleteImage ---

func TestDeleteImage_Success(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	stored := &domain.Image{ID: 3, ProductID: 10}
	f.images.On("GetByID", ctx, int64(3)).Return(stored, nil)
	f.images.On("Delete", ctx, int64(3)).Return(nil)
	f.publisher.On("PublishImageDeleted", ctx, stored).Return(nil)

	require.NoError(t, f.svc.DeleteImage(ctx, 3))
	f.images.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestDeleteImage_NotFound(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.images.On("GetByID", ctx, int64(404)).Return(nil, apperrors.NotFound("image", int64(404)))

	err := f.svc.DeleteImage(ctx, 404)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
