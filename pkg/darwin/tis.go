//go:build darwin

// Package darwin implements input source switching and keyboard observation
// on macOS with the Text Input Source Services and Quartz event taps.
package darwin

/*
#cgo LDFLAGS: -framework Carbon -framework CoreFoundation

#include <Carbon/Carbon.h>
#include <stdlib.h>

typedef struct {
    char *id;
    char *name;
    char *lang;
    int selectable;
} sourceInfo;

static char *copyUTF8(CFStringRef s) {
    if (s == NULL) {
        return NULL;
    }
    CFIndex size = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
    char *buf = malloc(size);
    if (!CFStringGetCString(s, buf, size, kCFStringEncodingUTF8)) {
        free(buf);
        return NULL;
    }
    return buf;
}

static void fillInfo(TISInputSourceRef src, sourceInfo *info) {
    info->id = copyUTF8(TISGetInputSourceProperty(src, kTISPropertyInputSourceID));
    info->name = copyUTF8(TISGetInputSourceProperty(src, kTISPropertyLocalizedName));

    CFArrayRef langs = TISGetInputSourceProperty(src, kTISPropertyInputSourceLanguages);
    info->lang = NULL;
    if (langs != NULL && CFArrayGetCount(langs) > 0) {
        info->lang = copyUTF8(CFArrayGetValueAtIndex(langs, 0));
    }

    CFBooleanRef selectable = TISGetInputSourceProperty(src, kTISPropertyInputSourceIsSelectCapable);
    info->selectable = selectable != NULL && CFBooleanGetValue(selectable);
}

static void freeInfo(sourceInfo *info) {
    free(info->id);
    free(info->name);
    free(info->lang);
}

static void freeInfos(sourceInfo *infos, int n) {
    for (int i = 0; i < n; i++) {
        freeInfo(&infos[i]);
    }
    free(infos);
}

static CFArrayRef createList(CFStringRef key, CFTypeRef value) {
    const void *keys[] = { key };
    const void *values[] = { value };
    CFDictionaryRef filter = CFDictionaryCreate(NULL, keys, values, 1,
        &kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
    CFArrayRef list = TISCreateInputSourceList(filter, false);
    CFRelease(filter);
    return list;
}

static int listKeyboardSources(sourceInfo **out) {
    CFArrayRef list = createList(kTISPropertyInputSourceCategory, kTISCategoryKeyboardInputSource);
    if (list == NULL) {
        return -1;
    }

    CFIndex n = CFArrayGetCount(list);
    *out = calloc(n > 0 ? n : 1, sizeof(sourceInfo));
    for (CFIndex i = 0; i < n; i++) {
        fillInfo((TISInputSourceRef)CFArrayGetValueAtIndex(list, i), &(*out)[i]);
    }
    CFRelease(list);

    return (int)n;
}

static int currentKeyboardSource(sourceInfo *out) {
    TISInputSourceRef src = TISCopyCurrentKeyboardInputSource();
    if (src == NULL) {
        return -1;
    }
    fillInfo(src, out);
    CFRelease(src);
    return 0;
}

static int selectSource(const char *id) {
    CFStringRef sid = CFStringCreateWithCString(NULL, id, kCFStringEncodingUTF8);
    CFArrayRef list = createList(kTISPropertyInputSourceID, sid);
    CFRelease(sid);

    if (list == NULL) {
        return -1;
    }
    if (CFArrayGetCount(list) == 0) {
        CFRelease(list);
        return -1;
    }

    OSStatus status = TISSelectInputSource((TISInputSourceRef)CFArrayGetValueAtIndex(list, 0));
    CFRelease(list);
    return (int)status;
}
*/
import "C"

import (
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"errors"
	"fmt"
	"unsafe"
)

// TISBackend is the Text Input Source Services backend. Source ids are TIS ids
// such as com.apple.keylayout.ABC.
type TISBackend struct{}

func NewTISBackend() *TISBackend {
	return &TISBackend{}
}

func (t *TISBackend) ListSources() ([]inputsource.InputSource, error) {
	var infos *C.sourceInfo
	n := int(C.listKeyboardSources(&infos))
	if n < 0 {
		return nil, errors.New("create input source list")
	}
	defer C.freeInfos(infos, C.int(n))

	out := make([]inputsource.InputSource, 0, n)
	for _, info := range unsafe.Slice(infos, n) {
		out = append(out, toSource(&info))
	}

	return out, nil
}

func (t *TISBackend) CurrentSource() (inputsource.InputSource, error) {
	var info C.sourceInfo
	if C.currentKeyboardSource(&info) != 0 {
		return inputsource.InputSource{}, errors.New("copy current keyboard input source")
	}
	defer C.freeInfo(&info)

	return toSource(&info), nil
}

func (t *TISBackend) Select(id string) error {
	cid := C.CString(id)
	defer C.free(unsafe.Pointer(cid))

	switch status := C.selectSource(cid); {
	case status == -1:
		return fmt.Errorf("input source %s: %w", id, inputsource.ErrUnknownSource)
	case status != 0:
		return fmt.Errorf("select input source %s: OSStatus %d", id, int(status))
	}

	return nil
}

func toSource(info *C.sourceInfo) inputsource.InputSource {
	src := inputsource.InputSource{
		ID:           goString(info.id),
		DisplayName:  goString(info.name),
		IsSelectable: info.selectable != 0,
	}
	if lang := goString(info.lang); lang != "" {
		src.LanguageTags = []string{lang}
	}
	return src
}

func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}
