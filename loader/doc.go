// Package loader resolves a dataset descriptor into the encoded bytes of a
// single DICOM instance.
//
// Three strategies are tried in a fixed order and the first applicable one is
// started:
//
//  1. local file: datasets flagged as local, loaded through the file loader
//  2. image type: dispatch on the scheme of the attached image id
//     (dicomfile, dicomweb, wadors, wadouri), or the document fallback
//  3. dataset: the dataset's own WADO-RS root or WADO-URI
//
// A strategy whose required inputs are missing is skipped. When none applies,
// Resolve returns interfaces.ErrNoValidLoader.
//
// # Usage Example
//
//	svc, err := loader.New(loader.Collaborators{
//	    Files:      files,
//	    FileLoader: files,
//	    Images:     images,
//	    Retriever:  dicomwebClient,
//	    Fetcher:    dicomwebClient,
//	}, loader.TransportConfig{
//	    Headers:      dicomweb.BearerToken(token),
//	    RequestHooks: []interfaces.RequestHook{dicomweb.RetryHook(dicomweb.DefaultRetryPolicy(), log)},
//	})
//
//	pending, err := svc.Resolve(ctx, dataset, studies)
//	if err != nil {
//	    return err
//	}
//	data, err := pending.Wait(ctx)
package loader
