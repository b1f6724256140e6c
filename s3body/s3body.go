// Package s3body exposes S3 objects as fetchbody owners.
package s3body

import (
	"context"

	"github.com/advdv/fetchbody"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
)

// GetObjectAPI is the part of the S3 client used to open objects.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Object is an S3 object whose content is consumed through fetchbody.
type Object struct {
	fetchbody.Mixin
	Bucket string
	Key    string
	ETag   string
}

// Open gets the object and streams its content as the body. The S3 response body is
// closed once it was read to the end, failed, or every clone of it was cancelled.
func Open(ctx context.Context, api GetObjectAPI, bucket, key string, optFns ...func(*s3.Options)) (*Object, error) {
	out, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, optFns...)
	if err != nil {
		return nil, errors.Wrapf(err, "get object s3://%s/%s", bucket, key)
	}

	obj := &Object{Bucket: bucket, Key: key, ETag: aws.ToString(out.ETag)}

	var mimeType fetchbody.MimeType
	if ct := aws.ToString(out.ContentType); ct != "" {
		if mt, err := fetchbody.ParseMIMEType(ct); err == nil {
			mimeType = mt
		}
	}

	var body *fetchbody.Body
	if out.Body != nil {
		var length *int64
		if out.ContentLength != nil && *out.ContentLength >= 0 {
			length = out.ContentLength
		}

		body = fetchbody.BodyFromReader(out.Body, length)
	}

	obj.SetBody(body, mimeType)
	return obj, nil
}
