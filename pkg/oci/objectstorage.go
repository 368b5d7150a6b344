package oci

import (
	"context"
	"fmt"
	"io"

	"github.com/adrianmross/region-select/pkg/ocicfg"
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"
)

// ObjectRef addresses an object in OCI Object Storage.
type ObjectRef struct {
	Namespace string
	Bucket    string
	Object    string
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("oci://%s/%s/%s", r.Namespace, r.Bucket, r.Object)
}

// GetObject downloads an object using credentials from an OCI CLI profile.
// profileConfigPath: OCI config file path (e.g., ~/.oci/config)
// profile: profile name; empty means DEFAULT
// region: overrides the profile region when set
func GetObject(ctx context.Context, profileConfigPath, profile, region string, ref ObjectRef) ([]byte, error) {
	if profileConfigPath == "" {
		return nil, fmt.Errorf("oci config path required")
	}
	if ref.Namespace == "" || ref.Bucket == "" || ref.Object == "" {
		return nil, fmt.Errorf("incomplete object reference %s", ref)
	}
	p, err := ocicfg.Lookup(profileConfigPath, profile, region)
	if err != nil {
		return nil, err
	}
	provider, err := common.ConfigurationProviderFromFileWithProfile(profileConfigPath, p.Name, "")
	if err != nil {
		return nil, fmt.Errorf("config provider: %w", err)
	}
	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("object storage client: %w", err)
	}
	client.SetRegion(p.Region)

	resp, err := client.GetObject(ctx, objectstorage.GetObjectRequest{
		NamespaceName: common.String(ref.Namespace),
		BucketName:    common.String(ref.Bucket),
		ObjectName:    common.String(ref.Object),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer resp.Content.Close()
	data, err := io.ReadAll(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}
