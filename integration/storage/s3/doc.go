// Package s3 relocates saved multipart entries to Amazon S3 or any
// S3-compatible object storage (MinIO, Wasabi, Cloudflare R2).
//
// Temporary save directories live under the OS temp dir and may be
// cleared at any time; this package gives entries worth keeping a durable
// home by streaming each saved record - in-memory text and bytes
// included - to object storage.
//
// Basic usage:
//
//	uploader, err := s3.New(ctx, s3.Config{
//		Bucket: "uploads",
//		Region: "us-east-1",
//	})
//	if err != nil {
//		return err
//	}
//
//	res := save.New().Temp(src)
//	entries, err := res.IntoResultStrict()
//	if err != nil {
//		return err
//	}
//	defer entries.Close() // local copies are disposable once uploaded
//
//	objects, err := uploader.Store(ctx, entries, "requests/"+requestID)
//	if err != nil {
//		return err
//	}
//	for _, obj := range objects {
//		log.Printf("stored %s as %s (%d bytes)", obj.Field, obj.Key, obj.Size)
//	}
//
// S3-compatible services need an endpoint and usually path-style
// addressing:
//
//	uploader, err := s3.New(ctx, s3.Config{
//		Bucket:         "uploads",
//		Region:         "us-east-1",
//		Endpoint:       "https://minio.internal:9000",
//		ForcePathStyle: true,
//	})
//
// The S3 client is hidden behind a narrow interface so tests can inject
// mocks via WithClient.
package s3
